package auction

// State is a draft phase.
type State string

const (
	StateAsleep     State = "asleep"
	StateStarting   State = "starting"
	StateNominating State = "nominating"
	StateBuffering  State = "buffering"
	StateBidding    State = "bidding"
	StateBreak      State = "break"
	StateEnding     State = "ending"
)

// Trigger names a phase transition.
type Trigger string

const (
	TriggerStartMachine Trigger = "start_machine"
	TriggerNomFromStart Trigger = "nom_from_start"
	TriggerBuffFromNom  Trigger = "buff_from_nom"
	TriggerBidFromBuff  Trigger = "bid_from_buff"
	TriggerNomFromBid   Trigger = "nom_from_bid"
	TriggerBreakFromNom Trigger = "break_from_nom"
	TriggerNomFromBreak Trigger = "nom_from_break"
	TriggerEndFromBid   Trigger = "end_from_bid"
	TriggerEndFromNom   Trigger = "end_from_nom"
)

type transition struct {
	from State
	to   State
}

var transitions = map[Trigger]transition{
	TriggerStartMachine: {StateAsleep, StateStarting},
	TriggerNomFromStart: {StateStarting, StateNominating},
	TriggerBuffFromNom:  {StateNominating, StateBuffering},
	TriggerBidFromBuff:  {StateBuffering, StateBidding},
	TriggerNomFromBid:   {StateBidding, StateNominating},
	TriggerBreakFromNom: {StateNominating, StateBreak},
	TriggerNomFromBreak: {StateBreak, StateNominating},
	TriggerEndFromBid:   {StateBidding, StateEnding},
	TriggerEndFromNom:   {StateNominating, StateEnding},
}

// Machine is the draft phase state machine. StateEnding is terminal: no
// trigger leaves it.
type Machine struct {
	state State
}

func NewMachine() *Machine {
	return &Machine{state: StateAsleep}
}

func (m *Machine) State() State {
	return m.state
}

// Fire applies a trigger. A trigger invoked from a state lacking that
// transition fails with CodeInvalidTransition and leaves the state
// unchanged; it is never silently ignored.
func (m *Machine) Fire(t Trigger) error {
	tr, ok := transitions[t]
	if !ok || tr.from != m.state {
		return Errf(CodeInvalidTransition, HintDirect, "cannot fire %s from state %s", t, m.state)
	}
	m.state = tr.to
	return nil
}
