package main

import (
	"fmt"
	"strconv"
	"strings"

	"finboard/internal/intake"
)

type potMove struct {
	id     int64
	amount string
}

// parsePotMove reads "id:amount".
func parsePotMove(s string) (potMove, error) {
	idStr, amount, ok := strings.Cut(s, ":")
	if !ok {
		return potMove{}, fmt.Errorf("expected id:amount, got %q", s)
	}
	id, err := parsePotID(idStr)
	if err != nil {
		return potMove{}, err
	}
	return potMove{id: id, amount: strings.TrimSpace(amount)}, nil
}

func parsePotID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pot id %q: %w", s, err)
	}
	return id, nil
}

// parseNewPot reads "name:target". The name may itself contain colons.
func parseNewPot(s string) (name, target string, err error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return "", "", fmt.Errorf("expected name:target, got %q", s)
	}
	return s[:i], strings.TrimSpace(s[i+1:]), nil
}

// parseDraft reads "name|amount|category|date". Missing trailing parts are
// left empty so validation reports them.
func parseDraft(s string) intake.Draft {
	parts := strings.SplitN(s, "|", 4)
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return intake.Draft{Name: get(0), Amount: get(1), Category: get(2), Date: get(3)}
}
