package config

type Config struct {
	Telegram    Telegram
	DatabaseURL string `env:"DATABASE_URL,required"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3000"`
}

type Telegram struct {
	Token   string `env:"TG_TOKEN,required"`
	ChatID  int64  `env:"TG_CHAT_ID,required"`
	Timeout int    `env:"TIMEOUT" envDefault:"60"`
}
