package league

import "fmt"

// League is a configured competitive tier band. Tier 1 is the best band;
// larger tier numbers are worse. Leagues are administrative configuration,
// read by the promotion computation at session close.
type League struct {
	ID                string
	Name              string
	Tier              int
	MembersCount      int
	PromotedCount     int
	RelegatedCount    int
	PromotionEnabled  bool
	RelegationEnabled bool
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Tier < 1 {
		return fmt.Errorf("league tier must be >= 1")
	}
	if l.MembersCount < 1 {
		return fmt.Errorf("league members count must be >= 1")
	}
	if l.PromotedCount < 0 || l.RelegatedCount < 0 {
		return fmt.Errorf("league movement counts must be >= 0")
	}
	return nil
}
