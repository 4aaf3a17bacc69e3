package models

// MConfig Structure
type MConfig struct {
	Name         string              `yaml:"name"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	LogLevel     string              `yaml:"log_level"`
	Storage      MStorageConfig      `yaml:"storage"`
	Network      MNetworkConfig      `yaml:"network"`
	Catalog      MCatalogConfig      `yaml:"catalog"`
	Preloader    MPreloaderConfig    `yaml:"preloader"`
	Monitor      MMonitorConfig      `yaml:"monitor"`
	Connectivity MConnectivityConfig `yaml:"connectivity"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
	CleanupSchedule    string `yaml:"cleanup_schedule"`
}

type MNetworkConfig struct {
	RequestTimeout    int `yaml:"timeout"`
	MaxRetries        int `yaml:"retries"`
	RateLimitMaxDelay int `yaml:"rate_limit_max_delay"`
}

type MCatalogConfig struct {
	BaseURL  string `yaml:"base_url"`
	Currency string `yaml:"currency"`
	PerPage  int    `yaml:"per_page"`
}

type MPreloaderConfig struct {
	StartPage          int `yaml:"start_page"`
	PageDelaySeconds   int `yaml:"page_delay_seconds"`
	OfflineWaitSeconds int `yaml:"offline_wait_seconds"`
}

type MMonitorConfig struct {
	IntervalSeconds int     `yaml:"interval_seconds"`
	ChangeThreshold float64 `yaml:"change_threshold"`
	AlertHistory    int     `yaml:"alert_history"`
}

type MConnectivityConfig struct {
	ProbeURL             string `yaml:"probe_url"`
	ProbeIntervalSeconds int    `yaml:"probe_interval_seconds"`
}
