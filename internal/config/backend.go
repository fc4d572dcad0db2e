package config

// Backend is the platform-native store for non-secret settings. macOS keeps
// them in UserDefaults under the docent domain; everywhere else they live in
// a JSON file under the XDG config directory. Secrets never pass through a
// Backend, they come from the keychain or the environment.
type Backend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
