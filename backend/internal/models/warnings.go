package models

import "fmt"

// WarningCode classifies a data-quality warning
type WarningCode string

const (
	WarningSelfLoop          WarningCode = "self_loop"
	WarningDanglingReference WarningCode = "dangling_reference"
	WarningUnknownRole       WarningCode = "unknown_role"
)

// Warning is a data-quality finding. Warnings never block a write.
type Warning struct {
	Code     WarningCode `json:"code" yaml:"code"`
	Kind     Kind        `json:"kind" yaml:"kind"`
	EntityID string      `json:"entity_id" yaml:"entity_id"`
	Message  string      `json:"message" yaml:"message"`
}

// RelationshipWarnings inspects one relationship against the characters it may reference
func RelationshipWarnings(r Relationship, characters map[string]Character) []Warning {
	var out []Warning
	if r.SelfLoop() {
		out = append(out, Warning{
			Code:     WarningSelfLoop,
			Kind:     KindRelationship,
			EntityID: r.ID,
			Message:  fmt.Sprintf("relationship %q links character %s to itself", r.RelationType, r.SourceCharacterID),
		})
	}
	for _, id := range []string{r.SourceCharacterID, r.TargetCharacterID} {
		if _, ok := characters[id]; !ok {
			out = append(out, Warning{
				Code:     WarningDanglingReference,
				Kind:     KindRelationship,
				EntityID: r.ID,
				Message:  fmt.Sprintf("relationship %q references unknown character %s", r.RelationType, id),
			})
			if r.SelfLoop() {
				break
			}
		}
	}
	return out
}

// CharacterWarnings inspects one character
func CharacterWarnings(c Character) []Warning {
	if c.Role == "" || c.Role.Known() {
		return nil
	}
	return []Warning{{
		Code:     WarningUnknownRole,
		Kind:     KindCharacter,
		EntityID: c.ID,
		Message:  fmt.Sprintf("character %s has non-preset role %q", c.Name, c.Role),
	}}
}
