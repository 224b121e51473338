package niche

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// NavigationState is what the niche selection step hands over to the calendar.
type NavigationState struct {
	SelectedNiches []string `json:"selectedNiches"`
}

// Resolve returns the selected niches carried by state. A missing state or
// field resolves to an empty list.
func Resolve(state *NavigationState) []string {
	if state == nil || state.SelectedNiches == nil {
		return []string{}
	}
	return state.SelectedNiches
}

// StateFromRequest reads the navigation state from repeated "niche" query
// parameters, a comma separated "niches" parameter, or a JSON body on POST.
// It returns nil when the request carries none of them.
func StateFromRequest(r *http.Request) *NavigationState {
	query := r.URL.Query()
	if values, ok := query["niche"]; ok {
		return &NavigationState{SelectedNiches: nonEmpty(values)}
	}
	if _, ok := query["niches"]; ok {
		return &NavigationState{SelectedNiches: nonEmpty(strings.Split(query.Get("niches"), ","))}
	}
	if r.Method == http.MethodPost && r.Body != nil {
		var state NavigationState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			log.Debugf("ignoring unreadable navigation state: %v", err)
			return nil
		}
		return &state
	}
	return nil
}

// CacheKey identifies a niche selection independent of order and duplicates.
// The key is the JSON array of the sorted niches, so values containing
// separators cannot collide.
func CacheKey(niches []string) string {
	sorted := append([]string{}, niches...)
	slices.Sort(sorted)
	key, _ := json.Marshal(slices.Compact(sorted))
	return string(key)
}

func nonEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
