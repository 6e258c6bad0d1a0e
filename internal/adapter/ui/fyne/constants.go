package fyne

// AppName is the window title.
const AppName = "Audition"

// Window dimensions.
const (
	Width  = 720
	Height = 480
)
