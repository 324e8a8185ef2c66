package sysex

import "fmt"

// The RK-100S 2 program dump interleaves a bits-carrier byte ahead of
// every seven data bytes. Within the documented "gap" region (master
// effects, vocoder filter, ribbon, scale) the physical position of a
// logical field is
//
//	packed(L) = gapBase + L + ceil((L + gapK) / 7)
//
// with constants derived from patch diffing against the hardware.
// Offsets outside the gap region are not defined by this formula.
const (
	gapBase = 283
	gapK    = 4
)

// Logical bases of the per-slot effect parameter areas within the gap
// region, and the fixed fields around them.
const (
	fx1ParamBase = 42
	fx2ParamBase = 66

	// FX1TypePacked is the packed offset of the effect 1 type byte.
	FX1TypePacked          = 327
	FX1RibbonAssignPacked  = 330
	FX1RibbonPolarityPacked = 331

	FX2TypePacked          = 355
	FX2RibbonAssignPacked  = 357
	FX2RibbonPolarityPacked = 358

	// RibbonAssignOff is the ribbon-assign sentinel meaning "off".
	// No effect type declares a slot index of 31.
	RibbonAssignOff = 31

	// MaxEffectType is the highest valid effect type id (0 = off).
	MaxEffectType = 17

	// MaxSlotIndex is the highest slot index any effect type declares.
	MaxSlotIndex = 22
)

// PackedOffset translates a logical gap-region offset into the physical
// byte index within the program-dump payload.
func PackedOffset(logical int) int {
	return gapBase + logical + (logical+gapK+6)/7
}

// FXParamPacked returns the packed offset of an effect parameter,
// addressed by effect slot (1 or 2) and the parameter's slot index
// within that effect's data area.
func FXParamPacked(slot, slotIndex int) (int, error) {
	if slot != 1 && slot != 2 {
		return 0, fmt.Errorf("effect slot must be 1 or 2, got %d", slot)
	}
	if slotIndex < 0 || slotIndex > MaxSlotIndex {
		return 0, fmt.Errorf("slot index must be 0-%d, got %d", MaxSlotIndex, slotIndex)
	}
	base := fx1ParamBase
	if slot == 2 {
		base = fx2ParamBase
	}
	return PackedOffset(base + slotIndex), nil
}

// FXTypePacked returns the packed offset of the type byte for effect
// slot 1 or 2.
func FXTypePacked(slot int) (int, error) {
	switch slot {
	case 1:
		return FX1TypePacked, nil
	case 2:
		return FX2TypePacked, nil
	}
	return 0, fmt.Errorf("effect slot must be 1 or 2, got %d", slot)
}

// FXRibbonAssignPacked returns the packed offset of the ribbon-assign
// byte for effect slot 1 or 2.
func FXRibbonAssignPacked(slot int) (int, error) {
	switch slot {
	case 1:
		return FX1RibbonAssignPacked, nil
	case 2:
		return FX2RibbonAssignPacked, nil
	}
	return 0, fmt.Errorf("effect slot must be 1 or 2, got %d", slot)
}
