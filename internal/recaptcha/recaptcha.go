package recaptcha

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
)

// DefaultMinScore is the lowest reCAPTCHA v3 score accepted as human.
const DefaultMinScore = 0.5

// Response is the siteverify answer.
type Response struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks reCAPTCHA tokens against the siteverify endpoint.
type Verifier struct {
	secret   string
	url      string
	minScore float64
	timeout  time.Duration
}

func NewVerifier(secret, verifyURL string, minScore float64) *Verifier {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Verifier{
		secret:   secret,
		url:      verifyURL,
		minScore: minScore,
		timeout:  10 * time.Second,
	}
}

// Verify reports whether token passes the check. A transport or decoding
// failure is returned as an error.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	var (
		resp Response
		code int
	)
	err := gout.POST(v.url).
		WithContext(ctx).
		SetTimeout(v.timeout).
		SetWWWForm(gout.H{
			"secret":   v.secret,
			"response": token,
			"remoteip": remoteIP,
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return false, fmt.Errorf("recaptcha verification request failed: %w", err)
	}
	if code != http.StatusOK {
		return false, fmt.Errorf("recaptcha verification returned status %d", code)
	}
	return resp.Success && resp.Score >= v.minScore, nil
}
