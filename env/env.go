package env

import (
	"time"

	"github.com/spf13/viper"
)

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetSeconds reads an integer number of seconds and returns it as a duration
func GetSeconds(key string) time.Duration {
	return time.Duration(viper.GetInt64(key)) * time.Second
}
