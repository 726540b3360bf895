package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/deeplink"
	"github.com/ravell-app/tg-bridge/types"
)

type fakeStore struct {
	premium       map[int64]time.Time
	seenCharges   map[string]bool
	recordErr     error
	setPremiumErr error
	premiumWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		premium:     map[int64]time.Time{},
		seenCharges: map[string]bool{},
	}
}

func (f *fakeStore) GetUser(userID int64) (*types.User, error) {
	until, ok := f.premium[userID]
	if !ok {
		return nil, nil
	}
	return &types.User{ID: userID, PremiumUntil: &until}, nil
}

func (f *fakeStore) BindChat(int64, int64) error { return nil }

func (f *fakeStore) SetPremiumUntil(userID int64, until time.Time) error {
	if f.setPremiumErr != nil {
		return f.setPremiumErr
	}
	f.premiumWrites++
	f.premium[userID] = until
	return nil
}

func (f *fakeStore) RecordPayment(p types.Payment) (bool, error) {
	if f.recordErr != nil {
		return false, f.recordErr
	}
	if f.seenCharges[p.TelegramPaymentCharge] {
		return false, nil
	}
	f.seenCharges[p.TelegramPaymentCharge] = true
	return true, nil
}

func newTestHandlers(st *fakeStore) *Handlers {
	return NewHandlers(st, nil, 1, zap.NewNop())
}

func starsPayment(payload, chargeID string, amount int) *models.SuccessfulPayment {
	return &models.SuccessfulPayment{
		Currency:                "XTR",
		TotalAmount:             amount,
		InvoicePayload:          payload,
		TelegramPaymentChargeID: chargeID,
	}
}

func TestApplyPaymentProGrantsPremium(t *testing.T) {
	st := newFakeStore()
	bh := newTestHandlers(st)

	before := time.Now().UTC()
	text := bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_1", 1))
	after := time.Now().UTC()

	until, ok := st.premium[42]
	require.True(t, ok, "premium must be written")
	assert.WithinRange(t, until, before.Add(premiumPeriod), after.Add(premiumPeriod))
	assert.Contains(t, text, "Премиум")
}

func TestApplyPaymentOverwritePolicy(t *testing.T) {
	st := newFakeStore()
	bh := newTestHandlers(st)

	bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_1", 1))
	first := st.premium[42]

	time.Sleep(10 * time.Millisecond)
	before := time.Now().UTC()
	bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_2", 1))
	second := st.premium[42]

	// second purchase overwrites from its own commit time, it does not extend
	assert.True(t, second.After(first))
	assert.WithinRange(t, second, before.Add(premiumPeriod), time.Now().UTC().Add(premiumPeriod))
	assert.Equal(t, 2, st.premiumWrites)
}

func TestApplyPaymentRedeliveryIgnored(t *testing.T) {
	st := newFakeStore()
	bh := newTestHandlers(st)

	bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_1", 1))
	first := st.premium[42]

	text := bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_1", 1))
	assert.Equal(t, first, st.premium[42], "redelivered charge must not re-apply the grant")
	assert.Equal(t, 1, st.premiumWrites)
	assert.Contains(t, text, "уже")
}

func TestApplyPaymentTestPayloadNoMutation(t *testing.T) {
	st := newFakeStore()
	bh := newTestHandlers(st)

	text := bh.applyPayment(7, starsPayment(deeplink.TestPayload(7), "ch_t", 100))
	assert.Empty(t, st.premium)
	assert.Zero(t, st.premiumWrites)
	assert.Contains(t, text, "Тестовый")
}

func TestApplyPaymentUnknownPayloadAcknowledged(t *testing.T) {
	st := newFakeStore()
	bh := newTestHandlers(st)

	text := bh.applyPayment(7, starsPayment("gift_7", "ch_x", 100))
	assert.Empty(t, st.premium)
	assert.Contains(t, text, "ch_x", "user gets the charge id for support")
}

func TestApplyPaymentStoreFailureReportsChargeID(t *testing.T) {
	st := newFakeStore()
	st.setPremiumErr = errors.New("db down")
	bh := newTestHandlers(st)

	text := bh.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_9", 1))
	assert.Contains(t, text, "ch_9")

	st2 := newFakeStore()
	st2.recordErr = errors.New("db down")
	bh2 := newTestHandlers(st2)
	text = bh2.applyPayment(42, starsPayment(deeplink.ProPayload(42), "ch_10", 1))
	assert.Contains(t, text, "ch_10")
	assert.Empty(t, st2.premium)
}

func TestTestAmountBounds(t *testing.T) {
	assert.False(t, testAmountValid(0))
	assert.True(t, testAmountValid(1))
	assert.True(t, testAmountValid(2500))
	assert.False(t, testAmountValid(2501))
}
