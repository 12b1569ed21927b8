// pay-by-plan/internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

func TestAcceptSequentialPayments(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)
	laybys := NewLaybyService(db, nil)

	if _, err := payments.Accept(layby.ID, mustDecimal(t, "30.00")); err != nil {
		t.Fatalf("первый платеж отклонен: %v", err)
	}
	if _, err := payments.Accept(layby.ID, mustDecimal(t, "30.00")); err != nil {
		t.Fatalf("второй платеж отклонен: %v", err)
	}

	remaining, err := laybys.RemainingBalance(layby)
	if err != nil {
		t.Fatalf("RemainingBalance: %v", err)
	}
	if !remaining.Equal(mustDecimal(t, "40.00")) {
		t.Errorf("остаток после 60.00 из 100.00 = %s, ожидалось 40.00", remaining)
	}
}

func TestAcceptRejectsOverpayment(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)

	if _, err := payments.Accept(layby.ID, mustDecimal(t, "60.00")); err != nil {
		t.Fatalf("платеж 60.00 отклонен: %v", err)
	}

	// Остаток 40.00: превышение хотя бы на рубль отклоняется.
	_, err := payments.Accept(layby.ID, mustDecimal(t, "41.00"))
	assertValidationError(t, err)

	// Ровно остаток принимается и завершает layby.
	if _, err := payments.Accept(layby.ID, mustDecimal(t, "40.00")); err != nil {
		t.Fatalf("платеж ровно в остаток отклонен: %v", err)
	}

	var reloaded models.Layby
	if err := db.First(&reloaded, layby.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsComplete {
		t.Error("после обнуления остатка is_complete должен стать true")
	}
}

func TestAcceptRejectsNonPositiveAmounts(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)

	_, err := payments.Accept(layby.ID, decimal.Zero)
	assertValidationError(t, err)

	_, err = payments.Accept(layby.ID, mustDecimal(t, "-5.00"))
	assertValidationError(t, err)
}

func TestAcceptRejectsCompletedLayby(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "50.00")

	payments := NewPaymentService(db)

	if _, err := payments.Accept(layby.ID, mustDecimal(t, "50.00")); err != nil {
		t.Fatalf("платеж в полный остаток отклонен: %v", err)
	}

	_, err := payments.Accept(layby.ID, mustDecimal(t, "1.00"))
	assertValidationError(t, err)
}

func TestAcceptRejectsInactiveLayby(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	laybys := NewLaybyService(db, nil)
	if err := laybys.SetActive(layby, false); err != nil {
		t.Fatal(err)
	}

	payments := NewPaymentService(db)
	_, err := payments.Accept(layby.ID, mustDecimal(t, "10.00"))
	assertValidationError(t, err)
}

// Копейки складываются без потерь: после 33.33 и 66.66 остаток ровно 0.01,
// и платеж в одну копейку завершает layby.
func TestAcceptExactDecimalArithmetic(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)
	laybys := NewLaybyService(db, nil)

	for _, amount := range []string{"33.33", "66.66"} {
		if _, err := payments.Accept(layby.ID, mustDecimal(t, amount)); err != nil {
			t.Fatalf("платеж %s отклонен: %v", amount, err)
		}
	}

	remaining, err := laybys.RemainingBalance(layby)
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.Equal(mustDecimal(t, "0.01")) {
		t.Fatalf("остаток = %s, ожидалось ровно 0.01", remaining)
	}

	if _, err := payments.Accept(layby.ID, mustDecimal(t, "0.01")); err != nil {
		t.Fatalf("платеж в последнюю копейку отклонен: %v", err)
	}

	var reloaded models.Layby
	if err := db.First(&reloaded, layby.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsComplete {
		t.Error("layby должен завершиться при точном нуле остатка")
	}
}

func TestUpdatePaymentValidatesExcludingSelf(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)

	first, err := payments.Accept(layby.ID, mustDecimal(t, "30.00"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := payments.Accept(layby.ID, mustDecimal(t, "30.00")); err != nil {
		t.Fatal(err)
	}

	// Без самого платежа оплачено 30.00: новая сумма до 70.00 допустима.
	if _, err := payments.Update(first.ID, mustDecimal(t, "70.00")); err != nil {
		t.Fatalf("корректировка до 70.00 отклонена: %v", err)
	}

	_, err = payments.Update(first.ID, mustDecimal(t, "70.01"))
	assertValidationError(t, err)

	_, err = payments.Update(first.ID, decimal.Zero)
	assertValidationError(t, err)
}

func TestUpdatePaymentDoesNotRevertCompletion(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)

	payment, err := payments.Accept(layby.ID, mustDecimal(t, "100.00"))
	if err != nil {
		t.Fatal(err)
	}

	// Корректировка вниз заново открывает остаток, но завершенность
	// не снимается: возврат в работу делается явно через SetComplete.
	if _, err := payments.Update(payment.ID, mustDecimal(t, "80.00")); err != nil {
		t.Fatalf("корректировка вниз отклонена: %v", err)
	}

	var reloaded models.Layby
	if err := db.First(&reloaded, layby.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsComplete {
		t.Error("корректировка платежа не должна снимать is_complete")
	}
}

func TestPaymentSummary(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)
	if _, err := payments.Accept(layby.ID, mustDecimal(t, "25.50")); err != nil {
		t.Fatal(err)
	}
	if _, err := payments.Accept(layby.ID, mustDecimal(t, "10.00")); err != nil {
		t.Fatal(err)
	}

	summary, err := payments.Summary(layby)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.TotalPaid.Equal(mustDecimal(t, "35.50")) {
		t.Errorf("TotalPaid = %s, ожидалось 35.50", summary.TotalPaid)
	}
	if !summary.RemainingBalance.Equal(mustDecimal(t, "64.50")) {
		t.Errorf("RemainingBalance = %s, ожидалось 64.50", summary.RemainingBalance)
	}
}

func TestDeletePaymentReopensBalance(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")

	payments := NewPaymentService(db)
	laybys := NewLaybyService(db, nil)

	payment, err := payments.Accept(layby.ID, mustDecimal(t, "40.00"))
	if err != nil {
		t.Fatal(err)
	}
	if err := payments.Delete(payment); err != nil {
		t.Fatal(err)
	}

	remaining, err := laybys.RemainingBalance(layby)
	if err != nil {
		t.Fatal(err)
	}
	if !remaining.Equal(mustDecimal(t, "100.00")) {
		t.Errorf("после удаления платежа остаток = %s, ожидалось 100.00", remaining)
	}
}
