package economy

// DefaultBankSupply is the number of units of each kind the bank starts with.
const DefaultBankSupply = 19

// Bank holds the resource supply not owned by any player. Every unit paid for
// a building or discarded goes back here; distribution draws from it.
type Bank struct {
	*Ledger
}

// NewBank creates a bank holding perResource units of every kind.
func NewBank(perResource int) *Bank {
	return &Bank{Ledger: NewLedgerWith(perResource)}
}

// Collect moves c from a player's ledger into the bank.
func (b *Bank) Collect(from *Ledger, c Collection) error {
	return Transfer(from, b.Ledger, c)
}

// Pay moves c from the bank into a player's ledger.
func (b *Bank) Pay(to *Ledger, c Collection) error {
	return Transfer(b.Ledger, to, c)
}

// Ration decides, per resource kind, whether the bank can honour the total
// owed. Kinds the bank cannot fully cover are dropped for everyone.
func (b *Bank) Ration(owed map[int]Collection) map[int]Collection {
	demand := make(Collection)
	for _, c := range owed {
		for r, n := range c {
			demand[r] += n
		}
	}

	out := make(map[int]Collection, len(owed))
	for id, c := range owed {
		granted := make(Collection)
		for r, n := range c {
			if b.Has(r, demand[r]) {
				granted[r] = n
			}
		}
		if len(granted) > 0 {
			out[id] = granted
		}
	}
	return out
}
