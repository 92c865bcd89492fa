package fincal

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

// Normalize turns a decoded JSON value (as produced by encoding/json into an
// `any`, preferably with UseNumber) into a complete, valid Document.
//
// It never fails: missing or mistyped fields get their default, list members
// that cannot be a valid record are dropped, and unknown members are kept.
// Normalize is idempotent.
func Normalize(raw any) *Document {
	doc, _ := normalize(raw)
	return doc
}

// normalize is Normalize that also reports every repair it made.
func normalize(raw any) (*Document, []string) {
	n := &normalizer{}
	root, ok := raw.(map[string]any)
	if !ok {
		if raw != nil {
			n.repair("document is not an object, using defaults")
		}
		root = map[string]any{}
	}
	n.root = root

	doc := &Document{
		Settings: n.settings(),
		Extra:    extra(root, "settings", "funds", "obligations", "transactions", "allocations", "fundAdjustments"),
	}

	if v, present := root["funds"]; !present || v == nil {
		doc.Funds = DefaultFunds()
	} else {
		doc.Funds = records(n, "funds", "f", n.fund)
	}
	doc.Obligations = records(n, "obligations", "obl", n.obligation)
	doc.Transactions = records(n, "transactions", "tx", n.transaction)
	doc.Allocations = records(n, "allocations", "al", n.allocation)
	doc.FundAdjustments = records(n, "fundAdjustments", "fadj", n.adjustment)
	return doc, n.repairs
}

type normalizer struct {
	root    map[string]any
	repairs []string
}

func (n *normalizer) repair(format string, args ...any) {
	n.repairs = append(n.repairs, fmt.Sprintf(format, args...))
}

// lookup evaluates a JSONPath against the document root.
func (n *normalizer) lookup(path string) (any, bool) {
	v, err := jsonpath.Get(path, n.root)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func (n *normalizer) settings() Settings {
	def := DefaultCalendarTimes()
	s := Settings{
		Currency:     DefaultCurrency,
		StartBalance: decimal.Zero,
	}
	if v, ok := n.lookup("$.settings.currency"); ok {
		if cur, ok := v.(string); ok && strings.TrimSpace(cur) != "" {
			s.Currency = strings.ToUpper(strings.TrimSpace(cur))
		} else {
			n.repair("settings.currency: invalid value %v", v)
		}
	}
	if v, ok := n.lookup("$.settings.startBalance"); ok {
		if d, ok := toDecimal(v); ok {
			s.StartBalance = d
		} else {
			n.repair("settings.startBalance: invalid value %v", v)
		}
	}
	s.CalendarTimes = CalendarTimes{
		ObligationHour:  n.intIn("obligationHour", 0, 23, def.ObligationHour),
		TransactionHour: n.intIn("transactionHour", 0, 23, def.TransactionHour),
		AllocationHour:  n.intIn("allocationHour", 0, 23, def.AllocationHour),
		PaymentHour:     n.intIn("paymentHour", 0, 23, def.PaymentHour),
		DurationMinutes: n.intIn("durationMinutes", 5, 240, def.DurationMinutes),
	}
	if settings, ok := n.root["settings"].(map[string]any); ok {
		s.Extra = extra(settings, "currency", "startBalance", "calendarTimes")
	}
	return s
}

func (n *normalizer) intIn(name string, min, max, def int) int {
	v, ok := n.lookup("$.settings.calendarTimes." + name)
	if !ok {
		return def
	}
	i, ok := toInt(v)
	if !ok || i < min || i > max {
		n.repair("settings.calendarTimes.%s: invalid value %v", name, v)
		return def
	}
	return i
}

// records normalizes the list under key, dropping invalid members and making
// ids unique.
func records[T any](n *normalizer, key, prefix string, parse func(object) (T, string, error)) []T {
	list := []T{}
	v, present := n.root[key]
	if !present || v == nil {
		return list
	}
	items, ok := v.([]any)
	if !ok {
		n.repair("%s: not a list, replaced by an empty list", key)
		return list
	}
	// kept holds the ids of the records already in the list. A dropped
	// record does not claim its id, references keep pointing to the kept one.
	kept := make(map[string]bool, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			n.repair("%s[%d]: not an object, dropped", key, i)
			continue
		}
		id, _ := obj["id"].(string)
		id = strings.TrimSpace(id)
		fresh := id == "" || kept[id]
		if fresh {
			id = NewID(prefix)
		}
		rec, _, err := parse(object{obj, id})
		if err != nil {
			n.repair("%s[%d]: %v, dropped", key, i, err)
			continue
		}
		if fresh {
			n.repair("%s[%d]: missing or duplicate id, assigned %s", key, i, id)
		}
		kept[id] = true
		list = append(list, rec)
	}
	return list
}

// object is a raw record member being normalized.
type object struct {
	m  map[string]any
	id string
}

func (o object) text(key string) string {
	s, _ := o.m[key].(string)
	return clampText(s)
}

func (o object) ref(key string) string {
	s, _ := o.m[key].(string)
	return strings.TrimSpace(s)
}

func (o object) date(key string) (date.Date, error) {
	s, ok := o.m[key].(string)
	if !ok {
		return date.Date{}, fmt.Errorf("missing %s", key)
	}
	return date.Parse(s)
}

func (o object) positive(key string) (decimal.Decimal, error) {
	d, ok := toDecimal(o.m[key])
	if !ok || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be a number greater than 0, got %v", key, o.m[key])
	}
	return d, nil
}

func (o object) hour(key string) *int {
	i, ok := toInt(o.m[key])
	if !ok || i < 0 || i > 23 {
		return nil
	}
	return &i
}

func (o object) extra(known ...string) map[string]any {
	return extra(o.m, append(known, "id")...)
}

func (n *normalizer) fund(o object) (Fund, string, error) {
	f := Fund{ID: o.id, Name: o.text("name"), Extra: o.extra("name", "balance")}
	if f.Name == "" {
		f.Name = o.id
	}
	balance, ok := toDecimal(o.m["balance"])
	switch {
	case !ok:
		balance = decimal.Zero
	case balance.IsNegative():
		n.repair("fund %s: negative balance %s clamped to 0", o.id, balance)
		balance = decimal.Zero
	}
	f.Balance = balance
	return f, o.id, nil
}

func (n *normalizer) obligation(o object) (Obligation, string, error) {
	due, err := o.date("dueDate")
	if err != nil {
		return Obligation{}, o.id, err
	}
	amount, err := o.positive("amount")
	if err != nil {
		return Obligation{}, o.id, err
	}
	status := Pending
	if s, ok := o.m["status"].(string); ok {
		if parsed, err := ParseStatus(s); err == nil {
			status = parsed
		}
	}
	return Obligation{
		ID:        o.id,
		Name:      o.text("name"),
		DueDate:   due,
		Amount:    amount,
		Status:    status,
		Note:      o.text("note"),
		EventHour: o.hour("eventHour"),
		Extra:     o.extra("name", "dueDate", "amount", "status", "note", "eventHour"),
	}, o.id, nil
}

func (n *normalizer) transaction(o object) (Transaction, string, error) {
	on, err := o.date("date")
	if err != nil {
		return Transaction{}, o.id, err
	}
	s, _ := o.m["type"].(string)
	typ, err := ParseTxType(s)
	if err != nil {
		return Transaction{}, o.id, err
	}
	amount, err := o.positive("amount")
	if err != nil {
		return Transaction{}, o.id, err
	}
	return Transaction{
		ID:           o.id,
		Date:         on,
		Type:         typ,
		Name:         o.text("name"),
		Amount:       amount,
		Category:     o.text("category"),
		Note:         o.text("note"),
		EventHour:    o.hour("eventHour"),
		ObligationID: o.ref("obligationId"),
		FundID:       o.ref("fundId"),
		Extra:        o.extra("date", "type", "name", "amount", "category", "note", "eventHour", "obligationId", "fundId"),
	}, o.id, nil
}

func (n *normalizer) allocation(o object) (Allocation, string, error) {
	on, err := o.date("date")
	if err != nil {
		return Allocation{}, o.id, err
	}
	amount, err := o.positive("amount")
	if err != nil {
		return Allocation{}, o.id, err
	}
	s, _ := o.m["direction"].(string)
	dir, err := ParseDirection(s)
	if err != nil {
		return Allocation{}, o.id, err
	}
	a := Allocation{
		ID:        o.id,
		Date:      on,
		Amount:    amount,
		Direction: dir,
		Note:      o.text("note"),
		EventHour: o.hour("eventHour"),
		Extra:     o.extra("date", "amount", "direction", "toFundId", "toObligationId", "note", "eventHour"),
	}
	if dir == ToObligation {
		a.ObligationID = o.ref("toObligationId")
		if a.ObligationID == "" {
			return Allocation{}, o.id, fmt.Errorf("missing toObligationId")
		}
	} else {
		a.FundID = o.ref("toFundId")
		if a.FundID == "" {
			return Allocation{}, o.id, fmt.Errorf("missing toFundId")
		}
	}
	return a, o.id, nil
}

func (n *normalizer) adjustment(o object) (FundAdjustment, string, error) {
	on, err := o.date("date")
	if err != nil {
		return FundAdjustment{}, o.id, err
	}
	fundID := o.ref("fundId")
	if fundID == "" {
		return FundAdjustment{}, o.id, fmt.Errorf("missing fundId")
	}
	amount, ok := toDecimal(o.m["amount"])
	if !ok || amount.IsZero() {
		return FundAdjustment{}, o.id, fmt.Errorf("amount must be a non zero number, got %v", o.m["amount"])
	}
	return FundAdjustment{
		ID:     o.id,
		Date:   on,
		FundID: fundID,
		Amount: amount,
		Reason: o.text("reason"),
		Extra:  o.extra("date", "fundId", "amount", "reason"),
	}, o.id, nil
}

// extra returns the members of m not listed in known, or nil.
func extra(m map[string]any, known ...string) map[string]any {
	var out map[string]any
	for k, v := range m {
		if isKnown(k, known) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func isKnown(k string, known []string) bool {
	for _, s := range known {
		if s == k {
			return true
		}
	}
	return false
}

// toDecimal coerces a decoded JSON value into a finite decimal. Numeric
// strings are accepted, with either '.' or ',' as the decimal separator.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

var (
	minInt = decimal.NewFromInt(math.MinInt32)
	maxInt = decimal.NewFromInt(math.MaxInt32)
)

// toInt coerces a decoded JSON value into an integer, rejecting fractions and
// values beyond the int32 range.
func toInt(v any) (int, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	d, ok := toDecimal(v)
	if !ok || !d.IsInteger() || d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, false
	}
	return int(d.IntPart()), true
}
