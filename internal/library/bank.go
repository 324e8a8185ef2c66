package library

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Bank maps device program slots to stored patch files. Unassigned
// slots are simply absent.
type Bank struct {
	Name  string
	Slots map[int]string
}

// NewBank returns an empty bank.
func NewBank(name string) *Bank {
	return &Bank{Name: name, Slots: map[int]string{}}
}

// Assign places a patch file in a slot, replacing any prior entry.
func (b *Bank) Assign(slot int, patchFile string) {
	b.Slots[slot] = patchFile
}

// Remove clears a slot.
func (b *Bank) Remove(slot int) {
	delete(b.Slots, slot)
}

// OrderedSlots returns the assigned slot numbers in ascending order.
func (b *Bank) OrderedSlots() []int {
	slots := make([]int, 0, len(b.Slots))
	for s := range b.Slots {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	return slots
}

var bankSlugPattern = regexp.MustCompile(`\s+`)

// Slug derives the file stem from the bank name.
func (b *Bank) Slug() string {
	return bankSlugPattern.ReplaceAllString(strings.ToLower(b.Name), "-")
}

type bankSlotEntry struct {
	Slot      int    `json:"slot"`
	PatchFile string `json:"patch_file"`
}

type bankDoc struct {
	Name  string          `json:"name"`
	Slots []bankSlotEntry `json:"slots"`
}

// Save writes the bank file with slots in ascending order.
func (b *Bank) Save(path string) error {
	doc := bankDoc{Name: b.Name, Slots: []bankSlotEntry{}}
	for _, slot := range b.OrderedSlots() {
		doc.Slots = append(doc.Slots, bankSlotEntry{Slot: slot, PatchFile: b.Slots[slot]})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadBank reads a bank file.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc bankDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	bank := NewBank(doc.Name)
	for _, entry := range doc.Slots {
		bank.Assign(entry.Slot, entry.PatchFile)
	}
	return bank, nil
}
