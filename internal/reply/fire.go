// Package reply implements the Reply Formatter (F): size-bounded rendering
// of fire records and avalanche forecasts, grounded on
// original_source/app/messages.py.
package reply

import (
	"fmt"
	"strings"

	"treksafer/internal/types"
)

const smsBudget = 159

var statusLabels = map[types.StatusLevel]string{
	types.StatusActive:     "Active",
	types.StatusManaged:    "Managed",
	types.StatusControlled: "Controlled",
	types.StatusOut:        "Out",
}

func statusLabel(level types.StatusLevel) string {
	if label, ok := statusLabels[level]; ok {
		return label
	}
	return "Unknown"
}

// Fire renders one FirePerimeter, degrading full -> medium -> short until
// it fits the SMS budget (§4.F). It never goes below short even if the
// result still exceeds the budget; that is documented behavior, not a
// failure.
func Fire(fp types.FirePerimeter) string {
	full := fireFull(fp)
	if utf16Units(full) <= smsBudget {
		return full
	}
	medium := fireMedium(fp)
	if utf16Units(medium) <= smsBudget {
		return medium
	}
	return fireShort(fp)
}

// Fires joins multiple rendered fire entries with blank lines.
func Fires(fps []types.FirePerimeter) string {
	lines := make([]string, len(fps))
	for i, fp := range fps {
		lines[i] = Fire(fp)
	}
	return strings.Join(lines, "\n\n")
}

func fireFull(fp types.FirePerimeter) string {
	var lines []string
	if fp.Name != "" && fp.Name != fp.Fire {
		lines = append(lines, fmt.Sprintf("Fire: %s (%s)", fp.Name, fp.Fire))
	} else {
		lines = append(lines, fmt.Sprintf("Fire: %s", fp.Fire))
	}
	if fp.Location != "" {
		lines = append(lines, fmt.Sprintf("Location: %s", fp.Location))
	}
	lines = append(lines, fmt.Sprintf("%skm %s", formatDistance(fp.DistanceM), fp.Direction))
	if fp.HasSize {
		lines = append(lines, fmt.Sprintf("Size: %s ha", formatHectares(fp.SizeHa)))
	}
	lines = append(lines, fmt.Sprintf("Status: %s", statusLabel(fp.Status)))
	return strings.Join(lines, "\n")
}

func fireMedium(fp types.FirePerimeter) string {
	var lines []string
	if fp.Name != "" && fp.Name != fp.Fire {
		lines = append(lines, fmt.Sprintf("Fire: %s %s", fp.Name, fp.Fire))
	} else {
		lines = append(lines, fmt.Sprintf("Fire: %s", fp.Fire))
	}
	lines = append(lines, fmt.Sprintf("%s %s", formatDistance(fp.DistanceM), fp.Direction))
	if fp.HasSize {
		lines = append(lines, fmt.Sprintf("Size: %s ha", formatHectares(fp.SizeHa)))
	}
	return strings.Join(lines, "\n")
}

func fireShort(fp types.FirePerimeter) string {
	var lines []string
	lines = append(lines, fp.Fire)
	lines = append(lines, fmt.Sprintf("%s%s", formatDistance(fp.DistanceM), fp.Direction))
	if fp.HasSize {
		lines = append(lines, fmt.Sprintf("%sha", formatHectares(fp.SizeHa)))
	}
	return strings.Join(lines, "\n")
}
