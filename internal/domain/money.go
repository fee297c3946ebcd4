package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// KoboPerNaira is the minor-unit scale for NGN.
const KoboPerNaira = 100

// ToKobo converts a major-unit (naira) amount to kobo. Rounding to the nearest
// kobo keeps user-entered amounts like 99.99 exact instead of truncating them.
func ToKobo(naira float64) int64 {
	return int64(math.Round(naira * KoboPerNaira))
}

// ToNaira converts a kobo amount back to major units for display.
func ToNaira(kobo int64) float64 {
	return float64(kobo) / KoboPerNaira
}

// FormatKobo renders a kobo amount as a human-readable naira string,
// e.g. 123456789 -> "₦1,234,567.89". Uses integer math only.
func FormatKobo(kobo int64) string {
	sign := ""
	if kobo < 0 {
		sign = "-"
		kobo = -kobo
	}
	return fmt.Sprintf("%s₦%s.%02d", sign, groupThousands(kobo/KoboPerNaira), kobo%KoboPerNaira)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
