package domain

import "time"

// Vote records one ballot. Keyed by the voter's connection ID; the display
// name is kept for attribution server-side but never exposed in tallies.
type Vote struct {
	VoterID     ConnID `json:"voter_id"`
	DisplayName string `json:"display_name"`
}

type PollOption struct {
	Text  string `json:"text"`
	Votes []Vote `json:"votes"`
}

// Poll is a persisted poll. Never physically deleted; IsActive gates voting.
type Poll struct {
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Options   []PollOption `json:"options"`
	Creator   string       `json:"creator"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// OptionCount is the anonymous per-option tally exposed to clients.
type OptionCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// SetVote moves the voter's ballot to the given option. The voter is first
// removed from every option, so a voter appears in at most one vote set. An
// out-of-range index retracts the vote rather than failing.
func (p *Poll) SetVote(vote Vote, optionIndex int) {
	for i := range p.Options {
		votes := p.Options[i].Votes[:0]
		for _, v := range p.Options[i].Votes {
			if v.VoterID != vote.VoterID {
				votes = append(votes, v)
			}
		}
		p.Options[i].Votes = votes
	}

	if optionIndex >= 0 && optionIndex < len(p.Options) {
		p.Options[optionIndex].Votes = append(p.Options[optionIndex].Votes, vote)
	}
}

// Tally returns per-option vote counts without voter identities.
func (p *Poll) Tally() []OptionCount {
	counts := make([]OptionCount, len(p.Options))
	for i, opt := range p.Options {
		counts[i] = OptionCount{Text: opt.Text, Count: len(opt.Votes)}
	}
	return counts
}
