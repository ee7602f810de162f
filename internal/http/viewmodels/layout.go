package viewmodels

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserEmail  string
	Toast      *ToastViewData
	ActivePath string
}

type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
