package model

import "strings"

// SeedResourcesReq creates resources. LockedIDs are created too but refuse deletion.
type SeedResourcesReq struct {
	IDs       []string `json:"ids" validate:"max=10000,dive,required,max=512"`
	LockedIDs []string `json:"locked_ids,omitempty" validate:"max=10000,dive,required,max=512"`
}

func (r *SeedResourcesReq) Validate() error {
	r.IDs = uniqueTrimmed(r.IDs)
	r.LockedIDs = uniqueTrimmed(r.LockedIDs)

	if len(r.IDs) == 0 && len(r.LockedIDs) == 0 {
		return &ErrorDetail{Code: "bad_request", Message: "ids is required"}
	}

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// uniqueTrimmed trims ids and drops blanks and duplicates, keeping first occurrence order.
func uniqueTrimmed(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]bool)
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" && !seen[trimmed] {
			seen[trimmed] = true
			unique = append(unique, trimmed)
		}
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}
