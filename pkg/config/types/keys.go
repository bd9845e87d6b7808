package types

// viper keys, one per leaf of TechwmConfig
const (
	Server                = "Server"
	ServerHost            = "Server.Host"
	ServerPort            = "Server.Port"
	ServerShutdownTimeout = "Server.ShutdownTimeout"
	Store                 = "Store"
	StoreType             = "Store.Type"
	StorePath             = "Store.Path"
	Policy                = "Policy"
	PolicyLimits          = "Policy.Limits"
)
