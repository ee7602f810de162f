package viewmodels

type LoadStateView struct {
	Status  string
	Loading bool
	Failed  bool
	Loaded  bool
	Error   string
	// ReloadCollection is posted to /moderation/reload to retry this collection.
	ReloadCollection string
}

type StatRow struct {
	Label string
	Value string
}

type StatsView struct {
	State LoadStateView
	Rows  []StatRow
}

type PendingGigRow struct {
	ID            string
	Title         string
	Subject       string
	SubmitterName string
	Submitted     string
	ApproveAction string
	InFlight      bool
}

type PendingGigsView struct {
	State       LoadStateView
	Items       []PendingGigRow
	Page        int
	TotalPages  int
	TotalCount  int
	ShowingFrom int
	ShowingTo   int
	Pagination  PaginationView
	// OtherPage carries reports_page through approve forms.
	OtherPage int
}

type AbuseReportRow struct {
	ID          string
	Message     string
	TargetType  string
	TargetID    string
	ActorID     string
	Reported    string
	CanBlock    bool
	BlockAction string
	InFlight    bool
}

type AbuseReportsView struct {
	State       LoadStateView
	Items       []AbuseReportRow
	Page        int
	TotalPages  int
	TotalCount  int
	ShowingFrom int
	ShowingTo   int
	Pagination  PaginationView
	// OtherPage carries pending_page through block forms.
	OtherPage int
}

type ModerationViewData struct {
	Layout  LayoutData
	Stats   StatsView
	Pending PendingGigsView
	Reports AbuseReportsView
}
