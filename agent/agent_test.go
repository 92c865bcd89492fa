package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

func testBooks(t *testing.T) *fincal.Store {
	t.Helper()
	today := date.New(2024, 1, 15)
	store := fincal.NewStore(&fincal.MemoryStorage{},
		fincal.WithLedgerOptions(fincal.WithClock(func() date.Date { return today })),
	)
	err := store.Update(context.Background(), func(l *fincal.Ledger) error {
		if _, err := l.AddTransaction(fincal.NewTransaction{Date: date.New(2024, 1, 5), Type: fincal.Income, Name: "Sueldo", Amount: decimal.RequireFromString("1000")}); err != nil {
			return err
		}
		if _, err := l.AddTransaction(fincal.NewTransaction{Date: date.New(2024, 1, 6), Type: fincal.Expense, Name: "Café", Amount: decimal.RequireFromString("45.5"), Category: "Comida"}); err != nil {
			return err
		}
		_, err := l.AddObligation(fincal.NewObligation{Name: "Renta", DueDate: date.New(2024, 1, 20), Amount: decimal.RequireFromString("500")})
		return err
	})
	if err != nil {
		t.Fatalf("could not seed the ledger: %v", err)
	}
	return store
}

func call(t *testing.T, lib Library, name string, args map[string]any) map[string]any {
	t.Helper()
	resp := lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
	if resp.Name != name {
		t.Errorf("%s response is named %q", name, resp.Name)
	}
	return resp.Response
}

func TestAccountant(t *testing.T) {
	lib := NewAccountant(testBooks(t)).Library

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{"MonthView", map[string]any{"month": "2024-01"}, []string{"2024-01", "Renta"}},
		{"MonthView", nil, []string{"2024-01"}},
		{"MonthSummary", map[string]any{"month": "2024-01"}, []string{"$1,000.00", "-$45.50"}},
		{"ExpensesByCategory", map[string]any{"month": "2024-01"}, []string{"Comida", "100.0%"}},
		{"Funds", nil, []string{"Ahorro", "Tarjetas", "Gastos varios"}},
		{"Obligations", nil, []string{"Renta", "$500.00"}},
		{"Search", map[string]any{"text": "café"}, []string{"Café"}},
		{"AvailableBalance", map[string]any{"date": "2024-01-05"}, []string{"Disponible al 2024-01-05: $1,000.00"}},
		{"AvailableBalance", nil, []string{"Disponible al 2024-01-15: $954.50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, lib, tt.name, tt.args)
			if e, ok := resp["error"]; ok {
				t.Fatalf("%s(%v) failed: %v", tt.name, tt.args, e)
			}
			output, _ := resp["output"].(string)
			for _, w := range tt.want {
				if !strings.Contains(output, w) {
					t.Errorf("%s(%v) output must contain %q, got:\n%s", tt.name, tt.args, w, output)
				}
			}
		})
	}
}

func TestAccountant_Errors(t *testing.T) {
	lib := NewAccountant(testBooks(t)).Library

	tests := []struct {
		name string
		args map[string]any
	}{
		{"MonthView", map[string]any{"month": "enero"}},
		{"MonthSummary", map[string]any{"month": 2024}},
		{"Search", nil},
		{"AvailableBalance", map[string]any{"date": "ayer"}},
		{"Unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, lib, tt.name, tt.args)
			if _, ok := resp["error"].(string); !ok {
				t.Errorf("%s(%v) = %v, want an error", tt.name, tt.args, resp)
			}
		})
	}
}

func TestNewDeclaration(t *testing.T) {
	decls := NewDeclaration(accountantFunctions(testBooks(t)))
	var names []string
	for _, d := range decls {
		names = append(names, d.Name)
		if d.Response == nil {
			t.Errorf("%s has no response schema", d.Name)
		}
	}
	want := "MonthView MonthSummary ExpensesByCategory Funds Obligations Search AvailableBalance"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("NewDeclaration() = %q, want %q", got, want)
	}
}

func TestExpert_AskNotStarted(t *testing.T) {
	e := NewAdvisor()
	if _, err := e.Ask(context.Background(), &genai.Part{Text: "hola"}); err == nil {
		t.Errorf("Ask() on an expert not started must fail")
	}
}

func TestAgent_Loop(t *testing.T) {
	var asked []string
	var out strings.Builder
	a := New(&out, strings.NewReader("/mes 2024-02\n¿Cuánto gasté?\n/mes nope\n/tema fechas\n/otro\nsalir\nnunca\n"), date.New(2024, 1, 15))
	a.ask = func(_ context.Context, q string) (string, error) {
		asked = append(asked, q)
		return "Gastaste $45.50", nil
	}
	if err := a.loop(context.Background(), []string{"  ", "hola"}); err != nil {
		t.Fatalf("loop() failed: %v", err)
	}

	want := []string{
		"[Mes de trabajo: 2024-01]\nhola",
		"[Mes de trabajo: 2024-02]\n¿Cuánto gasté?",
	}
	if diff := cmp.Diff(want, asked); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	if a.Month != date.MustParseMonth("2024-02") {
		t.Errorf("working month = %s, want 2024-02", a.Month)
	}
	for _, w := range []string{
		"mes de trabajo 2024-01",
		"Mes de trabajo: 2024-02",
		"Gastaste $45.50",
		`Mes inválido "nope"`,
		"# Dates",
		"Comando desconocido /otro",
	} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("session output must contain %q, got:\n%s", w, out.String())
		}
	}
}

func TestAgent_LoopEndOfInput(t *testing.T) {
	a := New(io.Discard, strings.NewReader("/ayuda"), date.New(2024, 1, 15))
	a.ask = func(context.Context, string) (string, error) {
		t.Fatal("session commands must not reach the facilitator")
		return "", nil
	}
	if err := a.loop(context.Background(), nil); err != nil {
		t.Errorf("loop() at end of input = %v, want nil", err)
	}
}

func TestAgent_LoopAskFails(t *testing.T) {
	a := New(io.Discard, strings.NewReader("hola\n"), date.New(2024, 1, 15))
	a.ask = func(context.Context, string) (string, error) { return "", errors.New("quota") }
	if err := a.loop(context.Background(), nil); err == nil || err.Error() != "quota" {
		t.Errorf("loop() = %v, want the facilitator error", err)
	}
}
