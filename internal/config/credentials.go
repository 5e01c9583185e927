package config

const (
	minConfiguredKeyLength = 10
	minValidKeyLength      = 32
)

// IsAPIKeyConfigured reports whether an API key is present.
// This is the predicate that gates every upstream call.
func IsAPIKeyConfigured(key string) bool {
	return len(key) >= minConfiguredKeyLength
}

// ValidateAPIKey reports whether key looks like a Hiro Platform key:
// at least 32 ASCII letters or digits. It is advisory only and does not
// gate dispatch.
func ValidateAPIKey(key string) bool {
	if len(key) < minValidKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}

// IsConfigured reports whether the Hiro credential is present
func (h HiroConfig) IsConfigured() bool {
	return IsAPIKeyConfigured(h.APIKey)
}

// NetworkDisplay holds user-facing network details
type NetworkDisplay struct {
	Name        string `json:"name"`
	ExplorerURL string `json:"explorerUrl"`
}

// Display returns the display name and explorer URL for the configured network
func (s StacksConfig) Display() NetworkDisplay {
	if s.Network == NetworkTestnet {
		return NetworkDisplay{
			Name:        "Stacks Testnet",
			ExplorerURL: "https://explorer.stacks.co/?chain=testnet",
		}
	}
	return NetworkDisplay{
		Name:        "Stacks Mainnet",
		ExplorerURL: "https://explorer.stacks.co/",
	}
}
