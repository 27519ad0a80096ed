package entities

// WireRequest is a fully-formed call against the QuickBooks API,
// produced by the translator, ready for dispatch.
type WireRequest struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
}

// WireResponse is the raw upstream outcome handed to the normalizer.
type WireResponse struct {
	StatusCode int
	Body       []byte
}

func (r *WireResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
