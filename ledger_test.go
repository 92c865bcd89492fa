package fincal

import (
	"errors"
	"testing"
)

// TestLedger_Scenario follows a month of a household ledger from a fresh
// document.
func TestLedger_Scenario(t *testing.T) {
	doc := NewDocument()
	l := newTestLedger(t, doc)
	calc := l.Calculator()

	if _, err := l.AddTransaction(NewTransaction{Date: day("2024-01-05"), Type: Income, Name: "Sueldo", Amount: D("1000")}); err != nil {
		t.Fatalf("AddTransaction() failed: %v", err)
	}
	if got := calc.AvailableBalance(doc, ptr(day("2024-01-05"))); !got.Equal(D("1000")) {
		t.Errorf("available on 2024-01-05 = %s, want 1000", got)
	}

	if _, err := l.Allocate(AllocationRequest{Date: day("2024-01-06"), Amount: D("300"), Direction: ToFund, TargetID: "f_ahorro"}); err != nil {
		t.Fatalf("Allocate(toFund) failed: %v", err)
	}
	if got := doc.Fund("f_ahorro").Balance; !got.Equal(D("300")) {
		t.Errorf("Ahorro balance = %s, want 300", got)
	}
	if got := calc.AvailableBalance(doc, ptr(day("2024-01-06"))); !got.Equal(D("700")) {
		t.Errorf("available on 2024-01-06 = %s, want 700", got)
	}

	renta, err := l.AddObligation(NewObligation{Name: "Renta", DueDate: day("2024-01-10"), Amount: D("500")})
	if err != nil {
		t.Fatalf("AddObligation() failed: %v", err)
	}
	if renta.Status != Pending {
		t.Errorf("new obligation status = %v, want pending", renta.Status)
	}
	if _, err := l.Allocate(AllocationRequest{Date: day("2024-01-07"), Amount: D("500"), Direction: ToObligation, TargetID: renta.ID}); err != nil {
		t.Fatalf("Allocate(toObligation) failed: %v", err)
	}
	if got := doc.Obligation(renta.ID).Status; got != Covered {
		t.Errorf("status after allocation = %v, want covered", got)
	}
	if got := calc.Coverage(doc, renta.ID).Remaining; !got.IsZero() {
		t.Errorf("remaining = %s, want 0", got)
	}

	tx, err := l.RegisterPayment(Payment{ObligationID: renta.ID, Amount: D("500")})
	if err != nil {
		t.Fatalf("RegisterPayment() failed: %v", err)
	}
	if tx.Type != Expense || !tx.Amount.Equal(D("500")) || !tx.IsPayment() || tx.ObligationID != renta.ID {
		t.Errorf("payment transaction = %+v", tx)
	}
	if doc.Transaction(tx.ID) == nil {
		t.Errorf("payment transaction not recorded")
	}
	if got := doc.Obligation(renta.ID).Status; got != Paid {
		t.Errorf("status after payment = %v, want paid", got)
	}

	_, err = l.AdjustFund("f_ahorro", D("-400"), "corrección")
	if !errors.Is(err, ErrNegativeBalanceRejected) || !errors.Is(err, ErrInvariant) {
		t.Errorf("AdjustFund(-400) error = %v, want ErrNegativeBalanceRejected", err)
	}
	if got := doc.Fund("f_ahorro").Balance; !got.Equal(D("300")) {
		t.Errorf("Ahorro balance after rejected adjustment = %s, want 300", got)
	}
	if len(doc.FundAdjustments) != 0 {
		t.Errorf("rejected adjustment was logged")
	}
}

func TestLedger_FailuresLeaveDocumentUntouched(t *testing.T) {
	testCases := []struct {
		name string
		op   func(l *Ledger) error
		kind error
		want error
	}{
		{
			name: "zero amount transaction",
			op: func(l *Ledger) error {
				_, err := l.AddTransaction(NewTransaction{Type: Expense, Name: "x", Amount: D("0")})
				return err
			},
			kind: ErrValidation, want: ErrInvalidAmount,
		},
		{
			name: "nameless transaction",
			op: func(l *Ledger) error {
				_, err := l.AddTransaction(NewTransaction{Type: Expense, Name: "  ", Amount: D("1")})
				return err
			},
			kind: ErrValidation,
		},
		{
			name: "duplicate fund",
			op:   func(l *Ledger) error { _, err := l.AddFund("  ahorro "); return err },
			kind: ErrInvariant, want: ErrDuplicateName,
		},
		{
			name: "negative obligation",
			op: func(l *Ledger) error {
				_, err := l.AddObligation(NewObligation{Name: "x", Amount: D("-1")})
				return err
			},
			kind: ErrValidation, want: ErrInvalidAmount,
		},
		{
			name: "allocate to missing fund",
			op: func(l *Ledger) error {
				_, err := l.Allocate(AllocationRequest{Amount: D("1"), Direction: ToFund, TargetID: "nope"})
				return err
			},
			kind: ErrNotFound,
		},
		{
			name: "allocate with release direction",
			op: func(l *Ledger) error {
				_, err := l.Allocate(AllocationRequest{Amount: D("1"), Direction: Release, TargetID: "f1"})
				return err
			},
			kind: ErrValidation,
		},
		{
			name: "over allocation",
			op: func(l *Ledger) error {
				_, err := l.Allocate(AllocationRequest{Amount: D("5000"), Direction: ToFund, TargetID: "f1"})
				return err
			},
			kind: ErrOverAllocation,
		},
		{
			name: "release more than the fund holds",
			op: func(l *Ledger) error {
				_, err := l.Release(ReleaseRequest{FundID: "f1", Amount: D("251")})
				return err
			},
			kind: ErrInvariant, want: ErrInsufficientFundBalance,
		},
		{
			name: "pay from a short fund",
			op: func(l *Ledger) error {
				_, err := l.RegisterPayment(Payment{ObligationID: "o1", Amount: D("300"), FundID: "f1"})
				return err
			},
			kind: ErrInvariant, want: ErrInsufficientFundBalance,
		},
		{
			name: "pay missing obligation",
			op: func(l *Ledger) error {
				_, err := l.RegisterPayment(Payment{ObligationID: "nope", Amount: D("1")})
				return err
			},
			kind: ErrNotFound,
		},
		{
			name: "zero adjustment",
			op:   func(l *Ledger) error { _, err := l.AdjustFund("f1", D("0"), "x"); return err },
			kind: ErrValidation, want: ErrInvalidAdjustment,
		},
		{
			name: "adjustment without reason",
			op:   func(l *Ledger) error { _, err := l.AdjustFund("f1", D("10"), " "); return err },
			kind: ErrValidation, want: ErrInvalidAdjustment,
		},
		{
			name: "invalid status",
			op:   func(l *Ledger) error { return l.ChangeObligationStatus("o1", Status(7)) },
			kind: ErrValidation, want: ErrInvalidStatus,
		},
		{
			name: "delete missing transaction",
			op:   func(l *Ledger) error { return l.DeleteTransaction("nope") },
			kind: ErrNotFound,
		},
		{
			name: "delete missing allocation",
			op:   func(l *Ledger) error { return l.DeleteAllocation("nope") },
			kind: ErrNotFound,
		},
		{
			name: "delete missing obligation",
			op:   func(l *Ledger) error { _, err := l.DeleteObligation("nope"); return err },
			kind: ErrNotFound,
		},
		{
			name: "delete non empty fund",
			op:   func(l *Ledger) error { return l.DeleteFund("f1") },
			kind: ErrInvariant, want: ErrNonZeroBalance,
		},
		{
			name: "invalid calendar times",
			op: func(l *Ledger) error {
				times := DefaultCalendarTimes()
				times.DurationMinutes = 300
				return l.UpdateCalendarTimes(times)
			},
			kind: ErrValidation,
		},
		{
			name: "unknown currency",
			op:   func(l *Ledger) error { return l.SetCurrency("XXXX") },
			kind: ErrValidation,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := sampleDocument()
			before := mustMarshal(t, doc)
			err := tc.op(newTestLedger(t, doc))
			if !errors.Is(err, tc.kind) {
				t.Errorf("error = %v, want kind %v", err, tc.kind)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			if after := mustMarshal(t, doc); after != before {
				t.Errorf("failed operation modified the document:\nbefore:\n%s\nafter:\n%s", before, after)
			}
		})
	}
}

func TestLedger_OverAllocationNeedsForce(t *testing.T) {
	doc := sampleDocument()
	l := newTestLedger(t, doc)
	req := AllocationRequest{Date: day("2024-01-07"), Amount: D("200"), Direction: ToFund, TargetID: "f1"}

	_, err := l.Allocate(req)
	var over *OverAllocationError
	if !errors.As(err, &over) {
		t.Fatalf("Allocate() error = %v, want *OverAllocationError", err)
	}
	if !over.Available.Equal(D("194.5")) || !over.Amount.Equal(D("200")) {
		t.Errorf("warning = %+v, want available 194.5 amount 200", over)
	}

	req.Force = true
	if _, err := l.Allocate(req); err != nil {
		t.Fatalf("forced Allocate() failed: %v", err)
	}
	if got := doc.Fund("f1").Balance; !got.Equal(D("450")) {
		t.Errorf("fund balance = %s, want 450", got)
	}
}

func TestLedger_FundNeverNegative(t *testing.T) {
	doc := sampleDocument()
	l := newTestLedger(t, doc)

	steps := []func() error{
		func() error { _, err := l.Release(ReleaseRequest{FundID: "f1", Amount: D("200")}); return err },
		func() error { _, err := l.AdjustFund("f1", D("-60"), "too much"); return err },
		func() error {
			_, err := l.RegisterPayment(Payment{ObligationID: "o2", Amount: D("50"), FundID: "f1"})
			return err
		},
		func() error { _, err := l.AdjustFund("f1", D("-50"), "exact"); return err },
		func() error { return l.DeleteAllocation("a1") },
		func() error { _, err := l.Release(ReleaseRequest{FundID: "f1", Amount: D("0.01")}); return err },
	}
	for i, step := range steps {
		_ = step()
		for _, f := range doc.Funds {
			if f.Balance.IsNegative() {
				t.Fatalf("step %d: fund %s went negative: %s", i, f.ID, f.Balance)
			}
		}
	}
	if got := doc.Fund("f1").Balance; !got.IsZero() {
		t.Errorf("final balance = %s, want 0", got)
	}
}

func TestLedger_DeleteObligationCascades(t *testing.T) {
	doc := sampleDocument()
	doc.Allocations = append(doc.Allocations,
		Allocation{ID: "a5", Date: day("2024-01-09"), Amount: D("10"), Direction: ToObligation, ObligationID: "o1"},
	)
	l := newTestLedger(t, doc)

	removed, err := l.DeleteObligation("o1")
	if err != nil {
		t.Fatalf("DeleteObligation() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d allocations, want 2", removed)
	}
	if doc.Obligation("o1") != nil {
		t.Errorf("obligation still present")
	}
	var ids []string
	for _, a := range doc.Allocations {
		ids = append(ids, a.ID)
	}
	if len(ids) != 3 || ids[0] != "a1" || ids[1] != "a3" || ids[2] != "a4" {
		t.Errorf("remaining allocations = %v, want [a1 a3 a4]", ids)
	}
}

func TestLedger_DeleteAllocation(t *testing.T) {
	t.Run("toFund clamps the fund at zero", func(t *testing.T) {
		doc := sampleDocument()
		doc.Fund("f1").Balance = D("100")
		if err := newTestLedger(t, doc).DeleteAllocation("a1"); err != nil {
			t.Fatal(err)
		}
		if got := doc.Fund("f1").Balance; !got.IsZero() {
			t.Errorf("balance = %s, want 0", got)
		}
	})
	t.Run("release refills the fund", func(t *testing.T) {
		doc := sampleDocument()
		if err := newTestLedger(t, doc).DeleteAllocation("a3"); err != nil {
			t.Fatal(err)
		}
		if got := doc.Fund("f1").Balance; !got.Equal(D("300")) {
			t.Errorf("balance = %s, want 300", got)
		}
	})
	t.Run("toObligation reconciles the status", func(t *testing.T) {
		doc := sampleDocument()
		if err := newTestLedger(t, doc).DeleteAllocation("a2"); err != nil {
			t.Fatal(err)
		}
		if got := doc.Obligation("o1").Status; got != Pending {
			t.Errorf("status = %v, want pending", got)
		}
	})
	t.Run("paid status is sticky", func(t *testing.T) {
		doc := sampleDocument()
		l := newTestLedger(t, doc)
		if err := l.ChangeObligationStatus("o1", Paid); err != nil {
			t.Fatal(err)
		}
		if err := l.DeleteAllocation("a2"); err != nil {
			t.Fatal(err)
		}
		if got := doc.Obligation("o1").Status; got != Paid {
			t.Errorf("status = %v, want paid", got)
		}
		if _, err := l.Allocate(AllocationRequest{Amount: D("1"), Direction: ToObligation, TargetID: "o1"}); err != nil {
			t.Fatal(err)
		}
		if got := doc.Obligation("o1").Status; got != Paid {
			t.Errorf("status after allocation = %v, want paid", got)
		}
	})
}

func TestLedger_DeleteFund(t *testing.T) {
	doc := sampleDocument()
	l := newTestLedger(t, doc)

	doc.Fund("f1").Balance = D("0.00005")
	if err := l.DeleteFund("f1"); !errors.Is(err, ErrFundInUse) {
		t.Errorf("DeleteFund(referenced) error = %v, want ErrFundInUse", err)
	}
	f, err := l.AddFund("Viaje")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.DeleteFund(f.ID); err != nil {
		t.Errorf("DeleteFund(empty) failed: %v", err)
	}
	if doc.Fund(f.ID) != nil {
		t.Errorf("fund still present")
	}
}

func TestLedger_Release(t *testing.T) {
	doc := sampleDocument()
	l := newTestLedger(t, doc)
	before := l.Calculator().AvailableBalance(doc, nil)

	a, err := l.Release(ReleaseRequest{FundID: "f1", Amount: D("100"), Note: "vacaciones"})
	if err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if a.Direction != Release || a.FundID != "f1" || a.Date != testToday {
		t.Errorf("release allocation = %+v", a)
	}
	if got := doc.Fund("f1").Balance; !got.Equal(D("150")) {
		t.Errorf("fund balance = %s, want 150", got)
	}
	if got := l.Calculator().AvailableBalance(doc, nil); !got.Equal(before.Add(D("100"))) {
		t.Errorf("available = %s, want %s", got, before.Add(D("100")))
	}
}

func TestLedger_RegisterPaymentFromFund(t *testing.T) {
	doc := sampleDocument()
	l := newTestLedger(t, doc)

	tx, err := l.RegisterPayment(Payment{ObligationID: "o2", Amount: D("60"), FundID: "f1", Date: day("2024-01-20"), EventHour: ptr(7)})
	if err != nil {
		t.Fatalf("RegisterPayment() failed: %v", err)
	}
	if tx.FundID != "f1" || tx.Name != "Pago: Luz" || tx.Category != "Pago" || *tx.EventHour != 7 {
		t.Errorf("payment transaction = %+v", tx)
	}
	if got := doc.Fund("f1").Balance; !got.Equal(D("190")) {
		t.Errorf("fund balance = %s, want 190", got)
	}
	// 60 covers the 60 the allocations left uncovered.
	if got := doc.Obligation("o2").Status; got != Paid {
		t.Errorf("status = %v, want paid", got)
	}
}

func TestPaymentPolicies(t *testing.T) {
	testCases := []struct {
		name     string
		policy   PaymentPolicy
		covered  string
		payments []string
		want     []Status
	}{
		{
			name:     "legacy ignores earlier partial payments",
			policy:   LegacyPayment{},
			payments: []string{"100", "100", "100"},
			want:     []Status{Pending, Pending, Pending},
		},
		{
			name:     "cumulative adds up partial payments",
			policy:   CumulativePayment{},
			payments: []string{"100", "100", "100"},
			want:     []Status{Pending, Pending, Paid},
		},
		{
			name:     "legacy pays the uncovered rest",
			policy:   LegacyPayment{},
			covered:  "200",
			payments: []string{"100"},
			want:     []Status{Paid},
		},
		{
			name:     "cumulative pays the uncovered rest",
			policy:   CumulativePayment{},
			covered:  "200",
			payments: []string{"100"},
			want:     []Status{Paid},
		},
		{
			name:     "cumulative keeps a manual covered status",
			policy:   CumulativePayment{},
			covered:  "100",
			payments: []string{"50"},
			want:     []Status{Covered},
		},
		{
			name:     "legacy demotes a manual covered status",
			policy:   LegacyPayment{},
			covered:  "100",
			payments: []string{"50"},
			want:     []Status{Pending},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := NewDocument()
			l := newTestLedger(t, doc, WithPaymentPolicy(tc.policy))
			o, err := l.AddObligation(NewObligation{Name: "Tarjeta", Amount: D("300")})
			if err != nil {
				t.Fatal(err)
			}
			if tc.covered != "" {
				if _, err := l.Allocate(AllocationRequest{Amount: D(tc.covered), Direction: ToObligation, TargetID: o.ID, Force: true}); err != nil {
					t.Fatal(err)
				}
				if err := l.ChangeObligationStatus(o.ID, Covered); err != nil {
					t.Fatal(err)
				}
			}
			for i, amount := range tc.payments {
				if _, err := l.RegisterPayment(Payment{ObligationID: o.ID, Amount: D(amount)}); err != nil {
					t.Fatal(err)
				}
				if got := doc.Obligation(o.ID).Status; got != tc.want[i] {
					t.Errorf("after payment %d: status = %v, want %v", i+1, got, tc.want[i])
				}
			}
		})
	}
}

func TestPaymentPolicies_NeverDemotePaid(t *testing.T) {
	for _, policy := range []PaymentPolicy{LegacyPayment{}, CumulativePayment{}} {
		ev := PaymentEvent{
			Obligation: Obligation{Amount: D("300"), Status: Paid},
			Amount:     D("1"),
			Before:     Coverage{Covered: D("0"), Remaining: D("300")},
			TotalPaid:  D("1"),
		}
		if got := policy.Status(ev); got != Paid {
			t.Errorf("%s: status = %v, want paid", policy, got)
		}
	}
}

func TestParsePaymentPolicy(t *testing.T) {
	for name, want := range map[string]string{"": "legacy", "Legacy": "legacy", "cumulative": "cumulative"} {
		p, err := ParsePaymentPolicy(name)
		if err != nil || p.String() != want {
			t.Errorf("ParsePaymentPolicy(%q) = %v, %v, want %s", name, p, err, want)
		}
	}
	if _, err := ParsePaymentPolicy("generous"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParsePaymentPolicy(generous) error = %v, want ErrValidation", err)
	}
}

func TestLedger_Settings(t *testing.T) {
	doc := NewDocument()
	l := newTestLedger(t, doc)

	times := CalendarTimes{ObligationHour: 6, TransactionHour: 7, AllocationHour: 8, PaymentHour: 9, DurationMinutes: 15}
	if err := l.UpdateCalendarTimes(times); err != nil {
		t.Fatal(err)
	}
	if doc.Settings.CalendarTimes != times {
		t.Errorf("calendar times = %+v, want %+v", doc.Settings.CalendarTimes, times)
	}
	if err := l.SetCurrency("EUR"); err != nil {
		t.Fatal(err)
	}
	l.SetStartBalance(D("-20"))
	if doc.Settings.Currency != "EUR" || !doc.Settings.StartBalance.Equal(D("-20")) {
		t.Errorf("settings = %+v", doc.Settings)
	}
}
