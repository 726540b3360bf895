package deeplink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Intent of a /start deep-link argument.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentBind
	IntentSubscribe
)

type Link struct {
	Intent Intent
	UserID int64
}

var (
	// ErrBadUserID means the argument matched a known shape but the id token
	// is not numeric. Unlike an unknown argument this is surfaced to the user.
	ErrBadUserID = errors.New("deep link user id is not numeric")

	ErrUnknownPayload = errors.New("unrecognized invoice payload")
)

// Parse decodes a /start argument. An empty or unrecognized argument yields
// IntentUnknown with no error.
func Parse(arg string) (Link, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Link{Intent: IntentUnknown}, nil
	}
	tokens := strings.Split(arg, "_")
	switch tokens[0] {
	case "bind":
		raw := strings.TrimPrefix(arg, "bind_")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Link{}, fmt.Errorf("%w: %q", ErrBadUserID, raw)
		}
		return Link{Intent: IntentBind, UserID: id}, nil
	case "sub":
		if len(tokens) < 3 {
			return Link{Intent: IntentUnknown}, nil
		}
		id, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil {
			return Link{}, fmt.Errorf("%w: %q", ErrBadUserID, tokens[2])
		}
		return Link{Intent: IntentSubscribe, UserID: id}, nil
	default:
		return Link{Intent: IntentUnknown}, nil
	}
}

// PurchaseKind tags an invoice payload.
type PurchaseKind int

const (
	PurchaseTest PurchaseKind = iota
	PurchasePro
)

type Purchase struct {
	Kind      PurchaseKind
	SubjectID int64
}

// ProPayload encodes the payload carried by a premium subscription invoice.
// The payload is the only channel correlating the invoice with its payment,
// so it must stay re-derivable from the same prefix scheme Parse uses.
func ProPayload(userID int64) string {
	return "pro_" + strconv.FormatInt(userID, 10)
}

func TestPayload(userID int64) string {
	return "test_" + strconv.FormatInt(userID, 10)
}

// ParsePayload decodes an invoice payload once, at the payment-confirmation
// boundary. Unknown tags fail loudly with the raw payload preserved.
func ParsePayload(payload string) (Purchase, error) {
	payload = strings.TrimSpace(payload)
	prefix, raw, ok := strings.Cut(payload, "_")
	if !ok {
		return Purchase{}, fmt.Errorf("%w: %q", ErrUnknownPayload, payload)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Purchase{}, fmt.Errorf("%w: %q", ErrUnknownPayload, payload)
	}
	switch prefix {
	case "test":
		return Purchase{Kind: PurchaseTest, SubjectID: id}, nil
	case "pro":
		return Purchase{Kind: PurchasePro, SubjectID: id}, nil
	default:
		return Purchase{}, fmt.Errorf("%w: %q", ErrUnknownPayload, payload)
	}
}
