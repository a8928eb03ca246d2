package appointment

import (
	"strings"

	"github.com/wizmedik/booking-api/internal/httperr"
)

// Purpose is why the patient books: a listed service or a free-text reason.
// It is a closed set; only ServicePurpose and OtherPurpose implement it.
type Purpose interface {
	Validate() error
	isPurpose()
}

type ServicePurpose struct {
	ServiceID uint
}

func (p ServicePurpose) Validate() error {
	if p.ServiceID == 0 {
		return httperr.ErrBusiness("invalid_purpose")
	}
	return nil
}

func (ServicePurpose) isPurpose() {}

type OtherPurpose struct {
	Reason string
}

const maxReasonLen = 255

func (p OtherPurpose) Validate() error {
	r := strings.TrimSpace(p.Reason)
	if r == "" || len(r) > maxReasonLen {
		return httperr.ErrBusiness("invalid_purpose")
	}
	return nil
}

func (OtherPurpose) isPurpose() {}

// Purpose kinds as they appear on the wire.
const (
	PurposeKindService = "service"
	PurposeKindOther   = "other"
)

// ParsePurpose builds a Purpose from its wire form.
func ParsePurpose(kind string, serviceID uint, reason string) (Purpose, error) {
	var p Purpose
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case PurposeKindService:
		p = ServicePurpose{ServiceID: serviceID}
	case PurposeKindOther:
		p = OtherPurpose{Reason: strings.TrimSpace(reason)}
	default:
		return nil, httperr.ErrBusiness("invalid_purpose")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
