package app

type errCtx struct {
	Code  int
	Title string
	Msg   string
}

func get400(msg string) errCtx {
	if msg == "" {
		msg = "Sorry, the form could not be read."
	}
	return errCtx{
		Code:  400,
		Title: "Bad request",
		Msg:   msg,
	}
}

func get404() errCtx {
	return errCtx{
		Code:  404,
		Title: "Page not found",
		Msg:   "Sorry, we couldn't find the page you were looking for.",
	}
}

func get429() errCtx {
	return errCtx{
		Code:  429,
		Title: "Too many requests",
		Msg:   "Too many submissions. Please wait a moment and try again.",
	}
}

func get500() errCtx {
	return errCtx{
		Code:  500,
		Title: "Internal server error",
		Msg:   "Sorry, there was an internal server error.",
	}
}

func get502() errCtx {
	return errCtx{
		Code:  502,
		Title: "Solver unavailable",
		Msg:   "There was an error communicating with the backend!",
	}
}
