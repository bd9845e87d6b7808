package policy

import (
	"fmt"

	"github.com/techwm-project/techwm/pkg/models"
)

// ErrIllegalResourceRequest is returned when a request exceeds the limits
// of the submitting account.
type ErrIllegalResourceRequest struct {
	Account models.AccountType
	Usage   Usage
	Limits  Limits
}

func NewErrIllegalResourceRequest(account models.AccountType, usage Usage, limits Limits) ErrIllegalResourceRequest {
	return ErrIllegalResourceRequest{Account: account, Usage: usage, Limits: limits}
}

func (e ErrIllegalResourceRequest) Error() string {
	return fmt.Sprintf("illegal resource request for %s account: requested %s, allowed %s",
		e.Account, e.Usage, e.Limits)
}

func (e ErrIllegalResourceRequest) Code() models.ErrorCode {
	return models.IllegalResourceRequest
}
