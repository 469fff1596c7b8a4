package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SchemaVersion tags the persisted document so the shape can evolve
// without breaking carts already sitting in the session store.
const SchemaVersion = 1

// MaxSamples is the sample-slot cap per cart.
const MaxSamples = 2

// Line is one product line: a (perfume, capacity) pair with the unit price
// snapshotted at add time. Price is kept as a string so it round-trips
// through JSON exactly.
type Line struct {
	Quantity   int    `json:"quantity"`
	PerfumeID  uint   `json:"perfume_id"`
	CapacityID uint   `json:"capacity_id"`
	Price      string `json:"price"`
}

func (l Line) UnitPrice() decimal.Decimal {
	d, err := decimal.NewFromString(l.Price)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Document is the session-persisted cart state. Products are keyed by
// "perfumeID_capacityID"; samples keep insertion order (oldest first).
type Document struct {
	SchemaVersion       int             `json:"schema_version"`
	Products            map[string]Line `json:"products"`
	Samples             []string        `json:"samples"`
	GiftWrap            string          `json:"gift_wrap"`
	SpecialInstructions string          `json:"special_instructions"`
}

func NewDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Products:      map[string]Line{},
		Samples:       []string{},
	}
}

func LineKey(perfumeID, capacityID uint) string {
	return fmt.Sprintf("%d_%d", perfumeID, capacityID)
}

// Add puts quantity units of the (perfume, capacity) line into the cart.
// A new line snapshots the given unit price; an existing line keeps its
// original snapshot. With override the quantity is set outright, otherwise
// it is added to the current quantity and floored at 1.
func (d *Document) Add(perfumeID, capacityID uint, price decimal.Decimal, quantity int, override bool) {
	key := LineKey(perfumeID, capacityID)
	line, ok := d.Products[key]
	if !ok {
		line = Line{
			Quantity:   0,
			PerfumeID:  perfumeID,
			CapacityID: capacityID,
			Price:      price.String(),
		}
	}

	if override {
		line.Quantity = quantity
	} else {
		line.Quantity = max(1, line.Quantity+quantity)
	}
	d.Products[key] = line
}

// Remove deletes the line if present; removing an absent line is a no-op.
func (d *Document) Remove(perfumeID, capacityID uint) {
	delete(d.Products, LineKey(perfumeID, capacityID))
}

// UpdateQuantity overwrites the quantity of an existing line. Bounds are
// the caller's business (stock is checked against the live catalog there).
func (d *Document) UpdateQuantity(perfumeID, capacityID uint, quantity int) {
	key := LineKey(perfumeID, capacityID)
	if line, ok := d.Products[key]; ok {
		line.Quantity = quantity
		d.Products[key] = line
	}
}

// AddSample appends the sample unless it is already held or both slots are
// taken; either way silently.
func (d *Document) AddSample(sampleID string) {
	if d.HasSample(sampleID) || len(d.Samples) >= MaxSamples {
		return
	}
	d.Samples = append(d.Samples, sampleID)
}

// ReplaceSample appends the sample, evicting the oldest-added one first
// when both slots are taken.
func (d *Document) ReplaceSample(sampleID string) {
	if d.HasSample(sampleID) {
		return
	}
	if len(d.Samples) >= MaxSamples {
		d.Samples = d.Samples[1:]
	}
	d.Samples = append(d.Samples, sampleID)
}

func (d *Document) RemoveSample(sampleID string) {
	for i, id := range d.Samples {
		if id == sampleID {
			d.Samples = append(d.Samples[:i], d.Samples[i+1:]...)
			return
		}
	}
}

func (d *Document) RemoveAllSamples() {
	d.Samples = []string{}
}

func (d *Document) HasSample(sampleID string) bool {
	for _, id := range d.Samples {
		if id == sampleID {
			return true
		}
	}
	return false
}

// SetGiftWrap selects the single gift-wrap slot, replacing any previous pick.
func (d *Document) SetGiftWrap(giftID string) {
	d.GiftWrap = giftID
}

func (d *Document) RemoveGiftWrap() {
	d.GiftWrap = ""
}

func (d *Document) SetSpecialInstructions(text string) {
	d.SpecialInstructions = text
}

// Len counts product units only; samples and the gift wrap do not show up
// in the cart badge.
func (d *Document) Len() int {
	n := 0
	for _, line := range d.Products {
		n += line.Quantity
	}
	return n
}

func (d *Document) IsEmpty() bool {
	return len(d.Products) == 0
}

// Clear resets the document to its canonical empty shape.
func (d *Document) Clear() {
	d.SchemaVersion = SchemaVersion
	d.Products = map[string]Line{}
	d.Samples = []string{}
	d.GiftWrap = ""
	d.SpecialInstructions = ""
}
