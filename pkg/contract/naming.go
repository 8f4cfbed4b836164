package contract

import (
	"fmt"
	"regexp"
)

// Identity field formats. These double as pattern constraints in the
// exported JSON Schema, so they stick to plain character classes.
const (
	ModuleIDPattern = `^A-[IVXLCDM]+-[0-9]+(\.[0-9]+)?$`
	AbbrPattern     = `^[A-Z0-9]{2,8}$`
	VersionPattern  = `^[0-9]+\.[0-9]+\.[0-9]+$`
)

// Filename convention: A-<BLOCK>-<NUM>_<ABBR>_contract_stageA_FINAL.json,
// where <BLOCK> is a roman numeral and <ABBR> the module's short code.
var (
	moduleIDRe = regexp.MustCompile(ModuleIDPattern)
	abbrRe     = regexp.MustCompile(AbbrPattern)
	versionRe  = regexp.MustCompile(VersionPattern)
	filenameRe = regexp.MustCompile(`^A-[IVXLCDM]+-\d+(\.\d+)?_[A-Z0-9]{2,8}_contract_stageA_FINAL\.json$`)
)

// ValidModuleID reports whether id matches the module_id format.
func ValidModuleID(id string) bool { return moduleIDRe.MatchString(id) }

// ValidAbbr reports whether abbr matches the module_abbr format.
func ValidAbbr(abbr string) bool { return abbrRe.MatchString(abbr) }

// ValidVersion reports whether v is a semantic version.
func ValidVersion(v string) bool { return versionRe.MatchString(v) }

// ConformingFilename reports whether name matches the contract filename
// convention (any module identity).
func ConformingFilename(name string) bool { return filenameRe.MatchString(name) }

// ExpectedFilename derives the canonical filename from a contract's own
// identity fields.
func ExpectedFilename(moduleID, abbr string) string {
	return fmt.Sprintf("%s_%s_contract_stageA_FINAL.json", moduleID, abbr)
}
