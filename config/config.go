package config

func InitializeConfig() error {
	NewLoggerService()
	if err := NewInfluxDB(); err != nil {
		return err
	}

	return nil
}
