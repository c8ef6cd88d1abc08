package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultAPIVersion is the watsonx.ai API version the catalog endpoints are
// pinned to.
const DefaultAPIVersion = "2024-09-16"

// DefaultRegions are the production watsonx.ai endpoints.
var DefaultRegions = []string{
	"https://us-south.ml.cloud.ibm.com",
	"https://eu-de.ml.cloud.ibm.com",
	"https://eu-gb.ml.cloud.ibm.com",
	"https://au-syd.ml.cloud.ibm.com",
	"https://jp-tok.ml.cloud.ibm.com",
	"https://ca-tor.ml.cloud.ibm.com",
}

type Config struct {
	// LangflowHome is the user-level Langflow directory that custom
	// components are deployed into.
	LangflowHome string `mapstructure:"langflow_home"`
	// ComponentDir is the local directory holding component sources,
	// laid out as <dir>/<kind>/<name>.py.
	ComponentDir string `mapstructure:"component_dir"`

	Venv    VenvConfig    `mapstructure:"venv"`
	Host    HostConfig    `mapstructure:"host"`
	Watsonx WatsonxConfig `mapstructure:"watsonx"`
}

type VenvConfig struct {
	Dir     string `mapstructure:"dir"`
	Python  string `mapstructure:"python"`
	Package string `mapstructure:"package"`
}

type HostConfig struct {
	// URL of a running Langflow instance, used by `wxflow invoke`.
	URL string `mapstructure:"url"`
}

type WatsonxConfig struct {
	Regions         []string `mapstructure:"regions"`
	ReferenceRegion string   `mapstructure:"reference_region"`
	APIVersion      string   `mapstructure:"api_version"`
	APIKeyEnv       string   `mapstructure:"api_key_env"`
	ProjectIDEnv    string   `mapstructure:"project_id_env"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("langflow_home", "~/.langflow")
	v.SetDefault("component_dir", "components")
	v.SetDefault("venv.dir", ".venv")
	v.SetDefault("venv.python", "python3")
	v.SetDefault("venv.package", "langflow")
	v.SetDefault("host.url", "http://127.0.0.1:7860")
	v.SetDefault("watsonx.regions", DefaultRegions)
	v.SetDefault("watsonx.reference_region", DefaultRegions[0])
	v.SetDefault("watsonx.api_version", DefaultAPIVersion)
	v.SetDefault("watsonx.api_key_env", "WATSONX_API_KEY")
	v.SetDefault("watsonx.project_id_env", "WATSONX_PROJECT_ID")
}

// Load reads the configuration from configPath. An empty configPath falls
// back to ./wxflow.yaml and ~/.config/wxflow/wxflow.yaml, and a missing file
// is not an error there: the defaults alone are a working configuration.
// Every key can also be set through WXFLOW_* environment variables
// (e.g. WXFLOW_LANGFLOW_HOME, WXFLOW_VENV_DIR).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WXFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	} else {
		v.SetConfigName("wxflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wxflow"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	c.LangflowHome = expandHome(c.LangflowHome)
	c.Venv.Dir = expandHome(c.Venv.Dir)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if c.LangflowHome == "" {
		return errors.New("langflow_home must not be empty")
	}
	if c.ComponentDir == "" {
		return errors.New("component_dir must not be empty")
	}
	if c.Venv.Dir == "" {
		return errors.New("venv.dir must not be empty")
	}
	if len(c.Watsonx.Regions) == 0 {
		return errors.New("watsonx.regions must not be empty")
	}
	if c.Watsonx.APIVersion == "" {
		return errors.New("watsonx.api_version must not be empty")
	}
	return nil
}

// ComponentDestRoot is where deployed components live, one subdirectory
// per component kind.
func (c *Config) ComponentDestRoot() string {
	return filepath.Join(c.LangflowHome, "components")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
