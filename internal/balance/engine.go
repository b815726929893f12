// Package balance derives the "who owes whom" view from a ledger
// snapshot. Everything here is read-only and recomputed on each request:
// nothing is persisted and running the pipeline twice over the same
// snapshot yields identical output.
//
// The pipeline has three steps: collect each expense's open shares into
// a group, cancel mutual debts between every participant pair with a
// waterfall allocation, then project the result for one participant.
package balance

import (
	"github.com/splitnest/splitnest/internal/expense"
	"github.com/splitnest/splitnest/internal/money"
)

// tolerance mirrors the share-open threshold: displayed amounts at or
// below it are treated as settled.
const tolerance = 0.009

// Item is one open share as displayed: Amount is what is still owed
// after payments and netting, FullAmount the original share.
type Item struct {
	ShareID     string            `json:"share_id"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Amount      float64           `json:"amount"`
	FullAmount  float64           `json:"full_amount"`
	PaidAmount  float64           `json:"paid_amount"`
	AutoSettled float64           `json:"auto_settled"`
	Kind        expense.ShareKind `json:"kind"`
	Note        string            `json:"note,omitempty"`

	// CounterpartyID is only set in per-participant projections.
	CounterpartyID string `json:"counterparty_id,omitempty"`
}

// Group bundles the open items of one expense.
type Group struct {
	ExpenseID        string  `json:"expense_id"`
	Title            string  `json:"title"`
	Note             string  `json:"note,omitempty"`
	Amount           float64 `json:"amount"`
	PayerID          string  `json:"payer_id"`
	Items            []*Item `json:"items"`
	TotalPending     float64 `json:"total_pending"`
	AutoSettledTotal float64 `json:"auto_settled_total"`
}

// PairAdjustment records the mutual amount cancelled between a pair of
// participants; From is always the lexicographically smaller id.
type PairAdjustment struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// BuildGroups collects each expense's open shares into a display group,
// preserving the snapshot's expense and share order. Expenses with
// nothing outstanding are dropped.
func BuildGroups(expenses []*expense.Expense) []*Group {
	var groups []*Group

	for _, e := range expenses {
		var items []*Item
		for _, s := range e.Shares {
			if !s.Open() {
				continue
			}
			items = append(items, &Item{
				ShareID:    s.ID,
				From:       s.DebtorID,
				To:         s.CreditorID,
				Amount:     s.Remaining(),
				FullAmount: money.Round2(s.Amount),
				PaidAmount: s.PaidAmount(),
				Kind:       s.Kind,
				Note:       s.Note,
			})
		}
		if len(items) == 0 {
			continue
		}

		groups = append(groups, &Group{
			ExpenseID:    e.ID,
			Title:        e.Title,
			Note:         e.Note,
			Amount:       money.Round2(e.Amount),
			PayerID:      e.PayerID,
			Items:        items,
			TotalPending: sumItems(items),
		})
	}

	return groups
}

// itemRef addresses an item inside the working copy of the groups.
type itemRef struct {
	group, item int
}

// pairBucket splits a participant pair's items by direction. Forward
// means smaller-id participant owes the larger-id one.
type pairBucket struct {
	left, right string
	forward     []itemRef
	reverse     []itemRef
}

// Settle cancels mutual debts between every participant pair. For each
// pair, the smaller directional total is extinguished from both sides by
// walking items in collection order (a waterfall, not a proportional
// spread) and recorded as one pair adjustment. The input groups are not
// modified. Bucket processing follows first-seen order so the result is
// deterministic.
func Settle(groups []*Group) ([]*Group, []*PairAdjustment) {
	work := cloneGroups(groups)

	buckets := make(map[string]*pairBucket)
	var bucketOrder []string

	for gi, g := range work {
		for ii, item := range g.Items {
			left, right := item.From, item.To
			if right < left {
				left, right = right, left
			}
			key := left + "\x00" + right

			b, ok := buckets[key]
			if !ok {
				b = &pairBucket{left: left, right: right}
				buckets[key] = b
				bucketOrder = append(bucketOrder, key)
			}

			ref := itemRef{group: gi, item: ii}
			if item.From == left {
				b.forward = append(b.forward, ref)
			} else {
				b.reverse = append(b.reverse, ref)
			}
		}
	}

	var adjustments []*PairAdjustment
	for _, key := range bucketOrder {
		b := buckets[key]

		var forward, reverse float64
		for _, ref := range b.forward {
			forward += work[ref.group].Items[ref.item].Amount
		}
		for _, ref := range b.reverse {
			reverse += work[ref.group].Items[ref.item].Amount
		}

		settle := money.Round2(forward)
		if r := money.Round2(reverse); r < settle {
			settle = r
		}
		if settle <= tolerance {
			continue
		}

		settleRefs(work, b.forward, settle)
		settleRefs(work, b.reverse, settle)

		adjustments = append(adjustments, &PairAdjustment{
			From:   b.left,
			To:     b.right,
			Amount: settle,
		})
	}

	// Drop extinguished items and recompute the group totals. The
	// auto-settled total counts every item, including the dropped ones.
	var settled []*Group
	for _, g := range work {
		var autoSettled float64
		var items []*Item
		for _, item := range g.Items {
			autoSettled += item.AutoSettled
			if item.Amount > tolerance {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}

		g.Items = items
		g.TotalPending = sumItems(items)
		g.AutoSettledTotal = money.Round2(autoSettled)
		settled = append(settled, g)
	}

	return settled, adjustments
}

// settleRefs deducts the settle budget from the referenced items in
// order until it is exhausted.
func settleRefs(work []*Group, refs []itemRef, budget float64) {
	remaining := budget
	for _, ref := range refs {
		if remaining <= tolerance {
			return
		}

		item := work[ref.group].Items[ref.item]
		deduct := money.Round2(item.Amount)
		if remaining < deduct {
			deduct = money.Round2(remaining)
		}
		if deduct <= 0 {
			continue
		}

		item.Amount = money.Round2(item.Amount - deduct)
		item.AutoSettled = money.Round2(item.AutoSettled + deduct)
		remaining = money.Round2(remaining - deduct)
	}
}

// Direction selects which side of an item a participant is on.
type Direction string

const (
	// DirectionOutgoing selects items where the participant is the debtor.
	DirectionOutgoing Direction = "outgoing"
	// DirectionIncoming selects items where the participant is the creditor.
	DirectionIncoming Direction = "incoming"
)

// ProjectParticipant filters settled groups to the items touching the
// given participant in one direction, tagging each item with its
// counterparty. Group amounts are re-summed over the kept items.
func ProjectParticipant(groups []*Group, participantID string, dir Direction) []*Group {
	var projected []*Group

	for _, g := range groups {
		var items []*Item
		var autoSettled float64
		for _, item := range g.Items {
			keep := item.From == participantID
			counterparty := item.To
			if dir == DirectionIncoming {
				keep = item.To == participantID
				counterparty = item.From
			}
			if !keep {
				continue
			}

			c := *item
			c.CounterpartyID = counterparty
			items = append(items, &c)
			autoSettled += c.AutoSettled
		}
		if len(items) == 0 {
			continue
		}

		projected = append(projected, &Group{
			ExpenseID:        g.ExpenseID,
			Title:            g.Title,
			Note:             g.Note,
			Amount:           sumItems(items),
			PayerID:          g.PayerID,
			Items:            items,
			TotalPending:     sumItems(items),
			AutoSettledTotal: money.Round2(autoSettled),
		})
	}

	return projected
}

// Summary aggregates one participant's position across the ledger.
type Summary struct {
	ParticipantID string            `json:"participant_id"`
	Outgoing      []*Group          `json:"outgoing"`
	Incoming      []*Group          `json:"incoming"`
	Adjustments   []*PairAdjustment `json:"adjustments"`
	TotalOwe      float64           `json:"total_owe"`
	TotalOwed     float64           `json:"total_owed"`
	AutoSettled   float64           `json:"auto_settled"`
	Net           float64           `json:"net"`
}

// Summarize runs the participant projection in both directions and
// computes the top-level aggregates.
func Summarize(groups []*Group, adjustments []*PairAdjustment, participantID string) *Summary {
	outgoing := ProjectParticipant(groups, participantID, DirectionOutgoing)
	incoming := ProjectParticipant(groups, participantID, DirectionIncoming)

	var owe, owed float64
	for _, g := range outgoing {
		owe += g.Amount
	}
	for _, g := range incoming {
		owed += g.Amount
	}

	var touching []*PairAdjustment
	var autoSettled float64
	for _, adj := range adjustments {
		if adj.From == participantID || adj.To == participantID {
			touching = append(touching, adj)
			autoSettled += adj.Amount
		}
	}

	owe = money.Round2(owe)
	owed = money.Round2(owed)

	return &Summary{
		ParticipantID: participantID,
		Outgoing:      outgoing,
		Incoming:      incoming,
		Adjustments:   touching,
		TotalOwe:      owe,
		TotalOwed:     owed,
		AutoSettled:   money.Round2(autoSettled),
		Net:           money.Round2(owed - owe),
	}
}

func sumItems(items []*Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return money.Round2(total)
}

func cloneGroups(groups []*Group) []*Group {
	out := make([]*Group, len(groups))
	for i, g := range groups {
		c := *g
		c.Items = make([]*Item, len(g.Items))
		for j, item := range g.Items {
			ci := *item
			ci.Amount = money.Round2(ci.Amount)
			c.Items[j] = &ci
		}
		out[i] = &c
	}
	return out
}
