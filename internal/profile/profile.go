// Package profile folds extracted partial updates into the accumulated
// user profile.
package profile

import "github.com/NadavGB86/event-pragmetizer-oss/internal/model"

// Default is the profile every session starts with.
func Default() model.UserProfile {
	return model.UserProfile{
		Needs: model.Needs{
			Participants:  model.DefaultParticipants(),
			Standards:     []string{},
			Habits:        []string{},
			Traits:        []string{},
			Constraints:   []model.Constraint{},
			LatentDesires: []string{},
		},
		Goals: model.Goals{
			Targets:        []model.Target{},
			DeclaredWants:  []string{},
			Considerations: []string{},
			Visions:        []model.Vision{},
		},
		DateInfo: model.NoDates(),
	}
}

// Clone returns a deep copy. Nil lists come back empty.
func Clone(p model.UserProfile) model.UserProfile {
	return model.UserProfile{
		Needs: model.Needs{
			Participants:  p.Needs.Participants,
			Standards:     cloneSlice(p.Needs.Standards),
			Habits:        cloneSlice(p.Needs.Habits),
			Traits:        cloneSlice(p.Needs.Traits),
			Constraints:   cloneSlice(p.Needs.Constraints),
			LatentDesires: cloneSlice(p.Needs.LatentDesires),
		},
		Goals: model.Goals{
			Targets:        cloneSlice(p.Goals.Targets),
			DeclaredWants:  cloneSlice(p.Goals.DeclaredWants),
			Considerations: cloneSlice(p.Goals.Considerations),
			Visions:        cloneSlice(p.Goals.Visions),
		},
		DateInfo: p.DateInfo,
	}
}

// Merge folds update into existing and returns the result. existing is never
// modified. Merging the same update twice yields the same profile as merging
// it once.
//
//   - date_info and participants are replaced wholesale when present.
//   - string lists append with exact-match dedup.
//   - targets and visions dedup on description only; the first entry's
//     other fields are kept.
//   - budget and time constraints keep only the latest value; other
//     constraints dedup on (type, value).
func Merge(existing model.UserProfile, update model.ProfileUpdate) model.UserProfile {
	result := Clone(existing)

	if update.DateInfo != nil {
		result.DateInfo = *update.DateInfo
	}

	if n := update.Needs; n != nil {
		if n.Participants != nil {
			result.Needs.Participants = *n.Participants
		}
		result.Needs.Standards = mergeStrings(result.Needs.Standards, n.Standards)
		result.Needs.Habits = mergeStrings(result.Needs.Habits, n.Habits)
		result.Needs.Traits = mergeStrings(result.Needs.Traits, n.Traits)
		result.Needs.LatentDesires = mergeStrings(result.Needs.LatentDesires, n.LatentDesires)
		result.Needs.Constraints = mergeConstraints(result.Needs.Constraints, n.Constraints)
	}

	if g := update.Goals; g != nil {
		result.Goals.Targets = mergeByKey(result.Goals.Targets, g.Targets, func(t model.Target) string { return t.Description })
		result.Goals.DeclaredWants = mergeStrings(result.Goals.DeclaredWants, g.DeclaredWants)
		result.Goals.Considerations = mergeStrings(result.Goals.Considerations, g.Considerations)
		result.Goals.Visions = mergeByKey(result.Goals.Visions, g.Visions, func(v model.Vision) string { return v.Description })
	}

	return result
}

func mergeStrings(existing, incoming []string) []string {
	return mergeByKey(existing, incoming, func(s string) string { return s })
}

// mergeByKey appends incoming items whose key is not yet present. Duplicates
// inside incoming collapse as well.
func mergeByKey[T any](existing, incoming []T, key func(T) string) []T {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, e := range existing {
		seen[key(e)] = struct{}{}
	}

	merged := existing
	for _, item := range incoming {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

func mergeConstraints(existing, incoming []model.Constraint) []model.Constraint {
	merged := existing
	for _, c := range incoming {
		if c.Type.Singleton() {
			merged = replaceSingleton(merged, c)
			continue
		}
		if !containsConstraint(merged, c) {
			merged = append(merged, c)
		}
	}
	return merged
}

// replaceSingleton puts c where the first constraint of its type sits and
// drops any other constraint of that type.
func replaceSingleton(list []model.Constraint, c model.Constraint) []model.Constraint {
	out := make([]model.Constraint, 0, len(list)+1)
	placed := false
	for _, e := range list {
		if e.Type != c.Type {
			out = append(out, e)
			continue
		}
		if !placed {
			out = append(out, c)
			placed = true
		}
	}
	if !placed {
		out = append(out, c)
	}
	return out
}

func containsConstraint(list []model.Constraint, c model.Constraint) bool {
	for _, e := range list {
		if e.Type == c.Type && e.Value == c.Value {
			return true
		}
	}
	return false
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
