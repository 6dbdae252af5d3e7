package datacollect

// ModuleName is the name the operations are published under.
const ModuleName = "data_collect"

const (
	ForisConfig      = "foris"
	EulaSection      = "eula"
	EulaSectionType  = "config"
	AgreedOption     = "agreed_collect"
	AgreedDefault    = false
	CollectorConfig  = "ucollect"
	FakesSection     = "fakes"
	FakesSectionType = "fakes"
	DisableOption    = "disable"

	LogCredentialsOption  = "log_credentials"
	LogCredentialsDefault = false
)

// Minipots lists the decoy services the collector can run. Identifiers
// outside of this set are ignored on read and never written.
var Minipots = []string{"23tcp", "2323tcp", "8123tcp", "8080tcp", "80tcp", "3128tcp"}

func IsMinipot(id string) bool {
	for _, m := range Minipots {
		if m == id {
			return true
		}
	}
	return false
}

const (
	DefaultFirewallStatusPath   = "/tmp/firewall-turris-status.txt"
	DefaultCollectorStatusPath  = "/tmp/ucollect-status"
	DefaultLockPath             = "/var/lock/datacollect-status.lock"
	DefaultRegisteredCmd        = "/usr/share/server-uplink/registered.sh"
	DefaultRegistrationCodeCmd  = "/usr/share/server-uplink/registration_code.sh"
	DefaultRegistrationCodePath = "/usr/share/server-uplink/registration_code"
	DefaultUciConfigDir         = "/etc/config"
	DefaultInitDir              = "/etc/init.d"
	DefaultServiceName          = "ucollect"
)

type Config struct {
	FirewallStatusPath   string `mapstructure:"firewall_status_path"`
	CollectorStatusPath  string `mapstructure:"collector_status_path"`
	LockPath             string `mapstructure:"lock_path"`
	RegisteredCmd        string `mapstructure:"registered_cmd"`
	RegistrationCodeCmd  string `mapstructure:"registration_code_cmd"`
	RegistrationCodePath string `mapstructure:"registration_code_path"`
	UciConfigDir         string `mapstructure:"uci_config_dir"`
	InitDir              string `mapstructure:"init_dir"`
	ServiceName          string `mapstructure:"service_name"`
}

// WithDefaults fills empty fields with the paths used on a router.
func (c Config) WithDefaults() Config {
	setDefault(&c.FirewallStatusPath, DefaultFirewallStatusPath)
	setDefault(&c.CollectorStatusPath, DefaultCollectorStatusPath)
	setDefault(&c.LockPath, DefaultLockPath)
	setDefault(&c.RegisteredCmd, DefaultRegisteredCmd)
	setDefault(&c.RegistrationCodeCmd, DefaultRegistrationCodeCmd)
	setDefault(&c.RegistrationCodePath, DefaultRegistrationCodePath)
	setDefault(&c.UciConfigDir, DefaultUciConfigDir)
	setDefault(&c.InitDir, DefaultInitDir)
	setDefault(&c.ServiceName, DefaultServiceName)
	return c
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
