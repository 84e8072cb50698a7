package config

func NewClusterConfig() (*ClusterConfig, error) {
	err := loadEnv()
	if err != nil {
		return nil, err
	}
	return loadConfig()
}
