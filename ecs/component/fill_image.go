package component

// FillImageRequest is a pending asynchronous fill image load. Token
// identifies the request; a completion whose token no longer matches is
// dropped. Quiet requests apply without emitting a change event.
type FillImageRequest struct {
	Ref     string
	Token   uint64
	Started bool
	Quiet   bool
}

var FillImageRequestComponent = NewComponent[FillImageRequest]()
