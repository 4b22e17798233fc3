package promo

// VerifyRequest is posted to the promo API.
type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	Valid           bool    `json:"valid"`
	Code            string  `json:"code"`
	Message         string  `json:"message,omitempty"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
}

// Result maps an API answer onto the state stored for the session.
func (r VerifyResponse) Result(requested string) Verified {
	code := r.Code
	if code == "" {
		code = requested
	}
	return Verified{Verified: r.Valid, Code: code}
}
