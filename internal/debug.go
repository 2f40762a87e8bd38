package internal

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/rs/zerolog/log"
)

var (
	sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)
	relevantRegex  = regexp.MustCompile(`^(LINEAR_FILTER_|GIN_)`)
)

func Version() string {
	return versioninfo.Short()
}

func ShowVersion() {
	log.Info().Msgf("Version: %s", Version())
}

// EnvironmentVars logs the variables that influence this program, masking
// anything that looks like a credential.
func EnvironmentVars() {
	log.Info().Msg("Environment variables")
	for _, kv := range RelevantEnvironment(os.Environ()) {
		log.Info().Msgf("  %s: %s", kv[0], kv[1])
	}
}

// RelevantEnvironment filters and sorts KEY=VALUE entries, masking sensitive values.
func RelevantEnvironment(environ []string) [][2]string {
	vars := make([][2]string, 0, len(environ))
	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 || !relevantRegex.MatchString(kv[0]) {
			continue
		}
		if sensitiveRegex.MatchString(kv[0]) {
			kv[1] = "********"
		}
		vars = append(vars, [2]string{kv[0], kv[1]})
	}
	sort.Slice(vars, func(i, j int) bool {
		return vars[i][0] < vars[j][0]
	})
	return vars
}
