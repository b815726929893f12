package balance

import (
	"testing"

	"github.com/splitnest/splitnest/internal/expense"
)

// snapshot builders. Shares get synthetic ids so items can be traced.

func ledgerExpense(id, title string, amount float64, payerID string, shares ...*expense.Share) *expense.Expense {
	return &expense.Expense{ID: id, Title: title, Amount: amount, PayerID: payerID, Shares: shares}
}

func openShare(id, debtor, creditor string, amount float64) *expense.Share {
	return &expense.Share{ID: id, DebtorID: debtor, CreditorID: creditor, Amount: amount, Kind: expense.KindOrdinary}
}

func paidShare(id, debtor, creditor string, amount, paid float64) *expense.Share {
	s := openShare(id, debtor, creditor, amount)
	s.Payments = []*expense.Payment{{ID: id + "-p", ShareID: id, FromID: debtor, ToID: creditor, Amount: paid}}
	return s
}

func TestBuildGroupsDropsSettled(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 90, "alice",
			openShare("s1", "bob", "alice", 30),
			paidShare("s2", "carol", "alice", 30, 30),
		),
		ledgerExpense("e2", "Paid off", 20, "alice",
			paidShare("s3", "bob", "alice", 10, 10),
		),
	}

	groups := BuildGroups(snapshot)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.ExpenseID != "e1" || len(g.Items) != 1 {
		t.Fatalf("group = %+v, want e1 with one open item", g)
	}
	if g.Items[0].ShareID != "s1" || g.Items[0].Amount != 30 {
		t.Errorf("item = %+v, want s1 with 30 remaining", g.Items[0])
	}
	if g.TotalPending != 30 {
		t.Errorf("total pending = %v, want 30", g.TotalPending)
	}
}

func TestBuildGroupsPartialPayment(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Utilities", 40, "alice",
			paidShare("s1", "bob", "alice", 20, 12.50),
		),
	}

	groups := BuildGroups(snapshot)
	item := groups[0].Items[0]
	if item.Amount != 7.50 {
		t.Errorf("remaining = %v, want 7.50", item.Amount)
	}
	if item.FullAmount != 20 || item.PaidAmount != 12.50 {
		t.Errorf("full/paid = %v/%v, want 20/12.50", item.FullAmount, item.PaidAmount)
	}
}

func TestBuildGroupsToleranceTreatsResidueAsSettled(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Residue", 10, "alice",
			paidShare("s1", "bob", "alice", 10, 9.995),
		),
	}
	if groups := BuildGroups(snapshot); len(groups) != 0 {
		t.Errorf("sub-cent residue should count as settled, got %+v", groups)
	}
}

func TestSettleCancelsMutualDebt(t *testing.T) {
	// bob owes alice 40, alice owes bob 25: the 25 cancels both ways.
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 80, "alice", openShare("s1", "bob", "alice", 40)),
		ledgerExpense("e2", "Groceries", 50, "bob", openShare("s2", "alice", "bob", 25)),
	}

	groups, adjustments := Settle(BuildGroups(snapshot))

	if len(adjustments) != 1 {
		t.Fatalf("expected 1 adjustment, got %d", len(adjustments))
	}
	adj := adjustments[0]
	if adj.From != "alice" || adj.To != "bob" || adj.Amount != 25 {
		t.Errorf("adjustment = %+v, want alice/bob 25", adj)
	}

	if len(groups) != 1 {
		t.Fatalf("expected 1 surviving group, got %d", len(groups))
	}
	g := groups[0]
	if g.ExpenseID != "e1" {
		t.Fatalf("surviving group = %s, want e1", g.ExpenseID)
	}
	item := g.Items[0]
	if item.Amount != 15 {
		t.Errorf("remaining = %v, want 15", item.Amount)
	}
	if item.AutoSettled != 25 {
		t.Errorf("auto settled = %v, want 25", item.AutoSettled)
	}
	if g.AutoSettledTotal != 25 {
		t.Errorf("group auto settled total = %v, want 25", g.AutoSettledTotal)
	}
	if g.TotalPending != 15 {
		t.Errorf("total pending = %v, want 15", g.TotalPending)
	}
}

func TestSettleWaterfallOrder(t *testing.T) {
	// bob owes alice 10 then 20 across two expenses; alice owes bob 25.
	// The 25 extinguishes the first item fully and the second partially.
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "First", 20, "alice", openShare("s1", "bob", "alice", 10)),
		ledgerExpense("e2", "Second", 40, "alice", openShare("s2", "bob", "alice", 20)),
		ledgerExpense("e3", "Reverse", 50, "bob", openShare("s3", "alice", "bob", 25)),
	}

	groups, adjustments := Settle(BuildGroups(snapshot))

	if len(adjustments) != 1 || adjustments[0].Amount != 25 {
		t.Fatalf("adjustments = %+v, want one of 25", adjustments)
	}
	if len(groups) != 1 {
		t.Fatalf("expected only e2 to survive, got %d groups", len(groups))
	}
	g := groups[0]
	if g.ExpenseID != "e2" {
		t.Fatalf("surviving group = %s, want e2", g.ExpenseID)
	}
	if g.Items[0].Amount != 5 {
		t.Errorf("second item remaining = %v, want 5", g.Items[0].Amount)
	}
	if g.Items[0].AutoSettled != 15 {
		t.Errorf("second item auto settled = %v, want 15", g.Items[0].AutoSettled)
	}
}

func TestSettleLeavesUnrelatedPairsAlone(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 60, "alice", openShare("s1", "bob", "alice", 30)),
		ledgerExpense("e2", "Taxi", 18, "carol", openShare("s2", "dave", "carol", 9)),
	}

	groups, adjustments := Settle(BuildGroups(snapshot))
	if len(adjustments) != 0 {
		t.Errorf("unexpected adjustments: %+v", adjustments)
	}
	if len(groups) != 2 {
		t.Errorf("expected both groups to survive, got %d", len(groups))
	}
}

func TestSettleDoesNotModifyInput(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 80, "alice", openShare("s1", "bob", "alice", 40)),
		ledgerExpense("e2", "Groceries", 50, "bob", openShare("s2", "alice", "bob", 25)),
	}

	groups := BuildGroups(snapshot)
	Settle(groups)

	if groups[0].Items[0].Amount != 40 || groups[1].Items[0].Amount != 25 {
		t.Error("Settle modified its input groups")
	}
}

func TestSettleIsDeterministic(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "A", 20, "alice", openShare("s1", "bob", "alice", 10)),
		ledgerExpense("e2", "B", 20, "carol", openShare("s2", "alice", "carol", 10)),
		ledgerExpense("e3", "C", 20, "bob", openShare("s3", "alice", "bob", 7)),
		ledgerExpense("e4", "D", 20, "alice", openShare("s4", "carol", "alice", 4)),
	}

	first, firstAdj := Settle(BuildGroups(snapshot))
	for i := 0; i < 50; i++ {
		groups, adj := Settle(BuildGroups(snapshot))
		if len(groups) != len(first) || len(adj) != len(firstAdj) {
			t.Fatalf("run %d: shape changed", i)
		}
		for j := range adj {
			if *adj[j] != *firstAdj[j] {
				t.Fatalf("run %d: adjustment %d = %+v, want %+v", i, j, adj[j], firstAdj[j])
			}
		}
		for j := range groups {
			if groups[j].ExpenseID != first[j].ExpenseID || groups[j].TotalPending != first[j].TotalPending {
				t.Fatalf("run %d: group %d differs", i, j)
			}
		}
	}
}

func TestSettleEmptySnapshot(t *testing.T) {
	groups, adjustments := Settle(BuildGroups(nil))
	if len(groups) != 0 || len(adjustments) != 0 {
		t.Errorf("empty snapshot: groups=%v adjustments=%v", groups, adjustments)
	}
}

func TestSummarize(t *testing.T) {
	// bob owes alice 40, alice owes bob 25 -> after netting bob owes 15.
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 80, "alice", openShare("s1", "bob", "alice", 40)),
		ledgerExpense("e2", "Groceries", 50, "bob", openShare("s2", "alice", "bob", 25)),
	}
	groups, adjustments := Settle(BuildGroups(snapshot))

	bob := Summarize(groups, adjustments, "bob")
	if bob.TotalOwe != 15 {
		t.Errorf("bob owes %v, want 15", bob.TotalOwe)
	}
	if bob.TotalOwed != 0 {
		t.Errorf("bob owed %v, want 0", bob.TotalOwed)
	}
	if bob.Net != -15 {
		t.Errorf("bob net = %v, want -15", bob.Net)
	}
	if bob.AutoSettled != 25 {
		t.Errorf("bob auto settled = %v, want 25", bob.AutoSettled)
	}
	if len(bob.Outgoing) != 1 || bob.Outgoing[0].Items[0].CounterpartyID != "alice" {
		t.Errorf("outgoing projection = %+v", bob.Outgoing)
	}

	alice := Summarize(groups, adjustments, "alice")
	if alice.Net != 15 {
		t.Errorf("alice net = %v, want 15", alice.Net)
	}

	carol := Summarize(groups, adjustments, "carol")
	if carol.Net != 0 || len(carol.Outgoing) != 0 || len(carol.Incoming) != 0 || len(carol.Adjustments) != 0 {
		t.Errorf("uninvolved participant summary = %+v", carol)
	}
}

func TestSummarizeMixedDirections(t *testing.T) {
	snapshot := []*expense.Expense{
		ledgerExpense("e1", "Rent", 30, "alice", openShare("s1", "bob", "alice", 15)),
		ledgerExpense("e2", "Dinner", 80, "bob", openShare("s2", "carol", "bob", 40)),
	}
	groups, adjustments := Settle(BuildGroups(snapshot))

	bob := Summarize(groups, adjustments, "bob")
	if bob.TotalOwe != 15 || bob.TotalOwed != 40 {
		t.Errorf("owe/owed = %v/%v, want 15/40", bob.TotalOwe, bob.TotalOwed)
	}
	if bob.Net != 25 {
		t.Errorf("net = %v, want 25", bob.Net)
	}
}
