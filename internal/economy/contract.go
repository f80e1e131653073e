package economy

import "fmt"

// Contract decides whether an exchange ratio is acceptable. receive is what
// the trading player gets, send is what they give up.
type Contract interface {
	Accepts(receive, send Collection) bool
	String() string
}

// AnyContract accepts Send units of any kinds for every Receive units.
type AnyContract struct {
	Receive int
	Send    int
}

// BankContract is the default 4:1 exchange available to every player.
var BankContract = AnyContract{Receive: 1, Send: 4}

// GenericPortContract is the 3:1 exchange of a generic seaport.
var GenericPortContract = AnyContract{Receive: 1, Send: 3}

func (c AnyContract) Accepts(receive, send Collection) bool {
	return ratioHolds(c.Receive, c.Send, receive, send)
}

func (c AnyContract) String() string {
	return fmt.Sprintf("%d:%d any", c.Send, c.Receive)
}

// SingleContract accepts Send units of Resource for every Receive units.
type SingleContract struct {
	Receive  int
	Send     int
	Resource Resource
}

// PortContract returns the 2:1 contract of a seaport specialised in r.
func PortContract(r Resource) SingleContract {
	return SingleContract{Receive: 1, Send: 2, Resource: r}
}

func (c SingleContract) Accepts(receive, send Collection) bool {
	if !ratioHolds(c.Receive, c.Send, receive, send) {
		return false
	}
	return send[c.Resource] == send.Total()
}

func (c SingleContract) String() string {
	return fmt.Sprintf("%d:%d %s", c.Send, c.Receive, c.Resource)
}

func ratioHolds(receiveUnit, sendUnit int, receive, send Collection) bool {
	if receiveUnit <= 0 || sendUnit <= 0 {
		return false
	}
	if receive.Validate() != nil || send.Validate() != nil {
		return false
	}
	received, sent := receive.Total(), send.Total()
	if received == 0 || sent == 0 {
		return false
	}
	if received%receiveUnit != 0 {
		return false
	}
	return (received/receiveUnit)*sendUnit == sent
}

// AcceptedBy returns the first contract in contracts that accepts the trade.
func AcceptedBy(contracts []Contract, receive, send Collection) (Contract, bool) {
	for _, c := range contracts {
		if c != nil && c.Accepts(receive, send) {
			return c, true
		}
	}
	return nil, false
}
