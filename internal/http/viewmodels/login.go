package viewmodels

type LoginViewData struct {
	CSRFToken    string
	Email        string
	Next         string
	ErrorMessage string
	Toast        *ToastViewData
}
