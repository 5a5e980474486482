package payment

import (
	"fmt"
	"strconv"
	"strings"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"
)

// Reference is a parsed payment reference id.
type Reference struct {
	BookingID int64
	Kind      domain.BookingKind
}

// ParseReference accepts CART_<n>, ORDER_<n> and a bare <n>; the last two
// select the single-booking path. n must be written canonically, so
// ORDER_017 or ORDER_+17 are rejected rather than read as booking 17.
func ParseReference(raw string) (Reference, error) {
	ref := strings.TrimSpace(raw)
	kind := domain.KindSingle
	switch {
	case strings.HasPrefix(ref, domain.ReferencePrefixCart):
		kind = domain.KindCart
		ref = strings.TrimPrefix(ref, domain.ReferencePrefixCart)
	case strings.HasPrefix(ref, domain.ReferencePrefixSingle):
		ref = strings.TrimPrefix(ref, domain.ReferencePrefixSingle)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != ref {
		return Reference{}, apperror.Validation(fmt.Sprintf("unrecognised reference id %q", raw))
	}
	return Reference{BookingID: id, Kind: kind}, nil
}

func (r Reference) String() string {
	return r.Kind.ReferencePrefix() + strconv.FormatInt(r.BookingID, 10)
}
