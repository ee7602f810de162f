package viewmodels

type AuditRow struct {
	When     string
	Action   string
	TargetID string
	Operator string
	Outcome  string
	Success  bool
	Detail   string
}

type AuditViewData struct {
	Layout        LayoutData
	Entries       []AuditRow
	Page          int
	TotalPages    int
	TotalCount    int64
	ShowingFrom   int
	ShowingTo     int
	Pagination    PaginationView
	EmptyStateMsg string
	Persistent    bool
}
