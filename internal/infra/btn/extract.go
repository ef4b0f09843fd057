package btn

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vietddude/namecord/internal/core/domain"
)

type nameList struct {
	Names []string `json:"names"`
}

type nameDetails struct {
	Name   string      `json:"name"`
	Gender string      `json:"gender"`
	Usages []usageWire `json:"usages"`
}

type usageWire struct {
	Code   string `json:"usage_code"`
	Full   string `json:"usage_full"`
	Gender string `json:"usage_gender"`
}

func extractNames(body []byte) ([]domain.NameCandidate, error) {
	var l nameList
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("expected name list: %w", err)
	}
	if len(l.Names) == 0 {
		return nil, errors.New("expected name list: no names")
	}

	names := make([]domain.NameCandidate, 0, len(l.Names))
	for i, n := range l.Names {
		if n == "" {
			return nil, fmt.Errorf("expected name list: empty name at %d", i)
		}
		names = append(names, domain.NameCandidate(n))
	}
	return names, nil
}

func extractUsages(body []byte) ([]domain.UsageRecord, error) {
	var details []nameDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("expected name details: %w", err)
	}

	var records []domain.UsageRecord
	for _, d := range details {
		for _, u := range d.Usages {
			if u.Code == "" {
				continue
			}
			g, err := domain.ParseGender(u.Gender)
			if err != nil {
				g = domain.GenderAny
			}
			records = append(records, domain.UsageRecord{
				Code:        domain.UsageCode(u.Code),
				Gender:      g,
				Description: u.Full,
			})
		}
	}
	return records, nil
}
