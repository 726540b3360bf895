package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    Link
		wantErr error
	}{
		{name: "bind", arg: "bind_42", want: Link{Intent: IntentBind, UserID: 42}},
		{name: "bind large id", arg: "bind_9007199254740993", want: Link{Intent: IntentBind, UserID: 9007199254740993}},
		{name: "bind non-numeric", arg: "bind_abc", wantErr: ErrBadUserID},
		{name: "sub", arg: "sub_premium_7", want: Link{Intent: IntentSubscribe, UserID: 7}},
		{name: "sub extra tokens", arg: "sub_x_123_y", want: Link{Intent: IntentSubscribe, UserID: 123}},
		{name: "sub non-numeric", arg: "sub_x_abc", wantErr: ErrBadUserID},
		{name: "sub too short", arg: "sub_7", want: Link{Intent: IntentUnknown}},
		{name: "empty", arg: "", want: Link{Intent: IntentUnknown}},
		{name: "whitespace", arg: "   ", want: Link{Intent: IntentUnknown}},
		{name: "unrelated", arg: "promo_2024", want: Link{Intent: IntentUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.arg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	p, err := ParsePayload(ProPayload(42))
	require.NoError(t, err)
	assert.Equal(t, Purchase{Kind: PurchasePro, SubjectID: 42}, p)

	p, err = ParsePayload(TestPayload(7))
	require.NoError(t, err)
	assert.Equal(t, Purchase{Kind: PurchaseTest, SubjectID: 7}, p)
}

func TestParsePayloadUnknown(t *testing.T) {
	for _, payload := range []string{"", "pro", "pro_", "pro_abc", "gift_42", "42"} {
		_, err := ParsePayload(payload)
		assert.ErrorIs(t, err, ErrUnknownPayload, "payload %q", payload)
	}
}
