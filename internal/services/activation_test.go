package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ad/go-telegram-course/internal/models"
)

func newTestActivation(env *testEnv, msgr Messenger, restartOnRepurchase bool) *ActivationService {
	engine := newTestEngine(env, fullCatalog(), msgr)
	errMgr := NewErrorManager(nil, 0)
	return NewActivationService(env.payments, env.enrollments, engine, msgr, env.settings, errMgr, restartOnRepurchase)
}

func createPendingPayment(t *testing.T, env *testEnv, userID int64, paymentID string) {
	t.Helper()
	err := env.payments.Create(&models.Payment{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    599,
		Currency:  "RUB",
		Method:    models.MethodYooKassa,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestActivate_CreatesEnrollmentAndDeliversDayOne(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, true)

	userID := int64(5001)
	createPendingPayment(t, env, userID, "pay-5001")

	if err := svc.Activate(context.Background(), userID, "pay-5001"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	enr, err := env.enrollments.GetByUserID(userID)
	if err != nil {
		t.Fatalf("Expected enrollment after activation: %v", err)
	}
	if enr.CurrentDay != 2 {
		t.Errorf("Expected day 1 delivered and advanced to 2, got %d", enr.CurrentDay)
	}

	texts := msgr.sentTexts()
	if len(texts) != 2 {
		t.Fatalf("Expected success message plus day 1 text, got %d", len(texts))
	}
	dayTexts := 0
	for _, text := range texts {
		if strings.Contains(text, "День 1/7") {
			dayTexts++
		}
	}
	if dayTexts != 1 {
		t.Errorf("Expected exactly one day 1 delivery, got %d", dayTexts)
	}

	payment, _ := env.payments.GetByID("pay-5001")
	if payment.Status != models.PaymentSuccess {
		t.Errorf("Expected payment marked success, got %s", payment.Status)
	}
}

func TestActivate_RepeatedNotificationIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, true)

	userID := int64(5002)
	createPendingPayment(t, env, userID, "pay-5002")

	if err := svc.Activate(context.Background(), userID, "pay-5002"); err != nil {
		t.Fatal(err)
	}
	sentBefore := len(msgr.sentTexts())
	enrBefore, _ := env.enrollments.GetByUserID(userID)

	// The provider retries the webhook for the same payment.
	if err := svc.Activate(context.Background(), userID, "pay-5002"); err != nil {
		t.Fatalf("Repeated Activate must not fail: %v", err)
	}

	if got := len(msgr.sentTexts()); got != sentBefore {
		t.Errorf("Expected no extra messages on repeat, had %d now %d", sentBefore, got)
	}
	enrAfter, _ := env.enrollments.GetByUserID(userID)
	if enrAfter.CurrentDay != enrBefore.CurrentDay {
		t.Errorf("Expected enrollment untouched on repeat, day %d became %d", enrBefore.CurrentDay, enrAfter.CurrentDay)
	}
}

func TestActivate_RestartPolicyResetsProgress(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, true)

	userID := int64(5003)
	createPendingPayment(t, env, userID, "pay-5003-a")
	if err := svc.Activate(context.Background(), userID, "pay-5003-a"); err != nil {
		t.Fatal(err)
	}
	for day := 2; day <= 4; day++ {
		if ok, err := env.enrollments.Advance(userID, day, testCourseDays); err != nil || !ok {
			t.Fatalf("setup advance from day %d failed", day)
		}
	}

	createPendingPayment(t, env, userID, "pay-5003-b")
	if err := svc.Activate(context.Background(), userID, "pay-5003-b"); err != nil {
		t.Fatal(err)
	}

	enr, _ := env.enrollments.GetByUserID(userID)
	// Day 1 was re-delivered right after the reset.
	if enr.CurrentDay != 2 {
		t.Errorf("Expected repurchase to restart at day 1 (now 2 after delivery), got %d", enr.CurrentDay)
	}
}

func TestActivate_ResumePolicyKeepsProgress(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, false)

	userID := int64(5004)
	createPendingPayment(t, env, userID, "pay-5004-a")
	if err := svc.Activate(context.Background(), userID, "pay-5004-a"); err != nil {
		t.Fatal(err)
	}
	for day := 2; day <= 4; day++ {
		if ok, err := env.enrollments.Advance(userID, day, testCourseDays); err != nil || !ok {
			t.Fatalf("setup advance from day %d failed", day)
		}
	}

	before, _ := env.enrollments.GetByUserID(userID)
	lastDelivery := *before.LastDeliveryAt

	createPendingPayment(t, env, userID, "pay-5004-b")
	if err := svc.Activate(context.Background(), userID, "pay-5004-b"); err != nil {
		t.Fatal(err)
	}

	enr, _ := env.enrollments.GetByUserID(userID)
	if enr.CurrentDay != 5 {
		t.Errorf("Expected resume to keep progress at day 5, got %d", enr.CurrentDay)
	}
	// Resume must not bypass the day interval: no immediate delivery.
	if enr.LastDeliveryAt == nil || !enr.LastDeliveryAt.Equal(lastDelivery) {
		t.Error("Expected last_delivery_at untouched on resume")
	}
}

func TestActivate_ResumePolicyRestartsCompletedCourse(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, false)

	userID := int64(5005)
	if _, err := env.enrollments.CreateOrReset(userID); err != nil {
		t.Fatal(err)
	}
	for day := 1; day <= testCourseDays; day++ {
		if ok, err := env.enrollments.Advance(userID, day, testCourseDays); err != nil || !ok {
			t.Fatalf("setup advance from day %d failed", day)
		}
	}

	createPendingPayment(t, env, userID, "pay-5005")
	if err := svc.Activate(context.Background(), userID, "pay-5005"); err != nil {
		t.Fatal(err)
	}

	// A finished course is not "still running", a new purchase starts over.
	enr, _ := env.enrollments.GetByUserID(userID)
	if !enr.IsActive {
		t.Error("Expected enrollment active again after repurchase")
	}
	if enr.CurrentDay != 2 {
		t.Errorf("Expected restart at day 1 (now 2 after delivery), got %d", enr.CurrentDay)
	}
	if enr.CompletedAt != nil {
		t.Error("Expected completed_at cleared on restart")
	}
}

func TestActivate_UnknownPaymentIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	msgr := &fakeMessenger{}
	svc := newTestActivation(env, msgr, true)

	// No pending row to flip, so the notification is dropped.
	if err := svc.Activate(context.Background(), 5006, "pay-missing"); err != nil {
		t.Fatalf("Activate for unknown payment must be a no-op: %v", err)
	}
	if _, err := env.enrollments.GetByUserID(5006); err == nil {
		t.Error("Expected no enrollment for unknown payment")
	}
	if len(msgr.sentTexts()) != 0 {
		t.Error("Expected no messages for unknown payment")
	}
}
