package app

import (
	"fmt"
	"time"

	"ayurveda_resorts/internal/domain"
)

// ConfiguratorState is a step of the linear booking flow.
type ConfiguratorState int

const (
	StateNoPlanSelected ConfiguratorState = iota
	StatePlanSelected
	StateConfiguring
	StateSubmitting
	StateSuccess
)

func (s ConfiguratorState) String() string {
	switch s {
	case StateNoPlanSelected:
		return "no_plan_selected"
	case StatePlanSelected:
		return "plan_selected"
	case StateConfiguring:
		return "configuring"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s ConfiguratorState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Selection is a visitor's choice set, replayed onto a fresh Configurator
// by stateless HTTP handlers.
type Selection struct {
	Plan     string `json:"plan"`
	Duration string `json:"duration,omitempty"`
	RoomType string `json:"roomType,omitempty"`
}

// Quote is the derived view of the current selection.
type Quote struct {
	State        ConfiguratorState `json:"state"`
	Resort       string            `json:"resort"`
	Item         string            `json:"item,omitempty"`
	Category     string            `json:"category,omitempty"`
	Plan         string            `json:"plan,omitempty"`
	Durations    []string          `json:"durations,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	RoomType     domain.RoomType   `json:"roomType,omitempty"`
	Price        domain.Price      `json:"price"`
	PriceDisplay string            `json:"priceDisplay"`
	CanSubmit    bool              `json:"canSubmit"`
}

// Configurator walks one resort's package → duration → occupancy choice.
// It is bound to a single resort; a different resort needs a new instance.
type Configurator struct {
	resort   domain.Resort
	state    ConfiguratorState
	item     string
	category int
	duration string
	roomType domain.RoomType
	price    domain.Price
	outbound string
}

func NewConfigurator(r domain.Resort) (*Configurator, error) {
	if !r.Bookable() {
		return nil, domain.ErrNotBookable
	}
	c := &Configurator{resort: r}
	c.Reset()
	return c, nil
}

func (c *Configurator) State() ConfiguratorState { return c.state }

func (c *Configurator) Resort() domain.Resort { return c.resort }

// Reset returns to NoPlanSelected and forgets every choice.
func (c *Configurator) Reset() {
	c.state = StateNoPlanSelected
	c.item = ""
	c.category = -1
	c.duration = ""
	c.roomType = domain.RoomSingle
	c.price = domain.Price{}
	c.outbound = ""
}

// SelectPlan binds the first category that lists the item and applies the
// defaults: first tier's duration and single occupancy.
func (c *Configurator) SelectPlan(item string) error {
	if c.state >= StateSubmitting {
		return domain.ErrAlreadySubmitted
	}
	idx, ok := c.resort.CategoryFor(item)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPlan, item)
	}
	c.item = item
	c.category = idx
	c.duration = ""
	if tiers := c.tiers(); len(tiers) > 0 {
		c.duration = tiers[0].DurationLabel
	}
	c.roomType = domain.RoomSingle
	c.state = StatePlanSelected
	c.recompute()
	return nil
}

func (c *Configurator) SelectDuration(label string) error {
	if err := c.requirePlan(); err != nil {
		return err
	}
	found := false
	for _, t := range c.tiers() {
		if t.DurationLabel == label {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", domain.ErrUnknownDuration, label)
	}
	c.duration = label
	c.state = StateConfiguring
	c.recompute()
	return nil
}

func (c *Configurator) SelectRoomType(rt domain.RoomType) error {
	if err := c.requirePlan(); err != nil {
		return err
	}
	if _, err := domain.ParseRoomType(string(rt)); err != nil {
		return err
	}
	c.roomType = rt
	c.state = StateConfiguring
	c.recompute()
	return nil
}

// Apply replays a selection in order. Empty duration/room type keep the
// defaults chosen by SelectPlan.
func (c *Configurator) Apply(sel Selection) error {
	if sel.Plan == "" {
		return domain.ErrNoPlanSelected
	}
	if err := c.SelectPlan(sel.Plan); err != nil {
		return err
	}
	if sel.Duration != "" {
		if err := c.SelectDuration(sel.Duration); err != nil {
			return err
		}
	}
	if sel.RoomType != "" {
		rt, err := domain.ParseRoomType(sel.RoomType)
		if err != nil {
			return err
		}
		if err := c.SelectRoomType(rt); err != nil {
			return err
		}
	}
	return nil
}

// Price is the resolved price for the latest selection.
func (c *Configurator) Price() domain.Price { return c.price }

// PlanLabel is "<resort name> - <item name>".
func (c *Configurator) PlanLabel() string {
	if c.item == "" {
		return ""
	}
	return c.resort.Name + " - " + c.item
}

// CanSubmit is false until a plan has been chosen.
func (c *Configurator) CanSubmit() bool {
	return c.state == StatePlanSelected || c.state == StateConfiguring
}

// OutboundURL is set once the flow reaches Success.
func (c *Configurator) OutboundURL() string { return c.outbound }

func (c *Configurator) Quote() Quote {
	q := Quote{
		State:        c.state,
		Resort:       c.resort.Name,
		Item:         c.item,
		Plan:         c.PlanLabel(),
		Duration:     c.duration,
		Price:        c.price,
		PriceDisplay: c.price.Display(),
		CanSubmit:    c.CanSubmit(),
	}
	if c.category >= 0 {
		q.Category = c.resort.PackageCategories[c.category].Title
		q.RoomType = c.roomType
		for _, t := range c.tiers() {
			q.Durations = append(q.Durations, t.DurationLabel)
		}
	}
	return q
}

// begin moves to Submitting and snapshots the booking record.
func (c *Configurator) begin(contact domain.Contact, now time.Time) (domain.BookingRecord, error) {
	if c.state >= StateSubmitting {
		return domain.BookingRecord{}, domain.ErrAlreadySubmitted
	}
	if !c.CanSubmit() {
		return domain.BookingRecord{}, domain.ErrNoPlanSelected
	}
	c.state = StateSubmitting
	return domain.BookingRecord{
		Name:       contact.Name,
		Phone:      contact.Phone,
		Email:      contact.Email,
		Date:       contact.Date,
		Plan:       c.PlanLabel(),
		ResortName: c.resort.Name,
		Duration:   c.duration,
		RoomType:   c.roomType,
		Price:      c.price,
		CreatedAt:  now.UTC(),
	}, nil
}

func (c *Configurator) succeed(outbound string) {
	c.outbound = outbound
	c.state = StateSuccess
}

func (c *Configurator) requirePlan() error {
	if c.state >= StateSubmitting {
		return domain.ErrAlreadySubmitted
	}
	if c.category < 0 {
		return domain.ErrNoPlanSelected
	}
	return nil
}

func (c *Configurator) tiers() []domain.PriceTier {
	if c.category < 0 {
		return nil
	}
	return c.resort.PackageCategories[c.category].PriceTiers
}

// recompute is synchronous so the price always reflects the latest choice.
func (c *Configurator) recompute() {
	c.price = domain.Price{}
	for _, t := range c.tiers() {
		if t.DurationLabel != c.duration {
			continue
		}
		if c.roomType == domain.RoomDouble {
			c.price = t.PriceDouble
		} else {
			c.price = t.PriceSingle
		}
		return
	}
}
