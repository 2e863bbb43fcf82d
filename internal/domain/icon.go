package domain

import (
	"encoding/json"
	"fmt"
)

// Icon is a closed set of feature/inclusion glyph identifiers.
type Icon uint8

const (
	IconUnknown Icon = iota
	IconMountain
	IconSparkles
	IconSmile
	IconPlane
	IconHome
	IconMapPin
	IconLeaf
	IconHeartPulse
	IconStethoscope
	IconUsers
	IconHandHeart
	IconChefHat
	IconActivity
	IconUserCheck
	IconUtensils
	IconFlower
	IconCamera
	IconWaves
	IconSunset
	IconBird
	IconBed
	IconSoup
	IconWind
	IconMonitor
	IconHeartHandshake
	IconFlag
	IconCoffee
	IconMessageCircle
	IconFootprints
	IconWifi
)

var iconKeys = [...]string{
	IconUnknown:        "unknown",
	IconMountain:       "mountain",
	IconSparkles:       "sparkles",
	IconSmile:          "smile",
	IconPlane:          "plane",
	IconHome:           "home",
	IconMapPin:         "map-pin",
	IconLeaf:           "leaf",
	IconHeartPulse:     "heart-pulse",
	IconStethoscope:    "stethoscope",
	IconUsers:          "users",
	IconHandHeart:      "hand-heart",
	IconChefHat:        "chef-hat",
	IconActivity:       "activity",
	IconUserCheck:      "user-check",
	IconUtensils:       "utensils",
	IconFlower:         "flower-2",
	IconCamera:         "camera",
	IconWaves:          "waves",
	IconSunset:         "sunset",
	IconBird:           "bird",
	IconBed:            "bed",
	IconSoup:           "soup",
	IconWind:           "wind",
	IconMonitor:        "monitor",
	IconHeartHandshake: "heart-handshake",
	IconFlag:           "flag",
	IconCoffee:         "coffee",
	IconMessageCircle:  "message-circle",
	IconFootprints:     "footprints",
	IconWifi:           "wifi",
}

var iconByKey = func() map[string]Icon {
	m := make(map[string]Icon, len(iconKeys))
	for i, k := range iconKeys {
		if Icon(i) != IconUnknown {
			m[k] = Icon(i)
		}
	}
	return m
}()

// ParseIcon maps a stored key to its Icon. Unknown keys return IconUnknown
// and false so callers can report them.
func ParseIcon(key string) (Icon, bool) {
	ic, ok := iconByKey[key]
	if !ok {
		return IconUnknown, false
	}
	return ic, true
}

// LookupIcon is ParseIcon for stored content: an unrecognized non-empty
// key comes back alongside IconUnknown so it can be preserved.
func LookupIcon(key string) (Icon, string) {
	if ic, ok := ParseIcon(key); ok {
		return ic, ""
	}
	return IconUnknown, key
}

// storedKey is what gets written back: the original text for an unknown
// icon, the glyph otherwise.
func (i Icon) storedKey(raw string) string {
	if i == IconUnknown && raw != "" {
		return raw
	}
	return i.Glyph()
}

func (i Icon) String() string {
	if int(i) >= len(iconKeys) {
		return iconKeys[IconUnknown]
	}
	return iconKeys[i]
}

// Glyph is the key a renderer should draw. Unknown icons render as sparkles.
func (i Icon) Glyph() string {
	if i == IconUnknown || int(i) >= len(iconKeys) {
		return iconKeys[IconSparkles]
	}
	return iconKeys[i]
}

func (i Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Glyph())
}

// UnmarshalJSON is strict. Features and inclusion items decode through
// LookupIcon instead so stored typos survive.
func (i *Icon) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	ic, ok := ParseIcon(s)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIcon, s)
	}
	*i = ic
	return nil
}
