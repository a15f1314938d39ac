package constants

// ConfigDirName is the name of the configuration directory in the user's home directory
const ConfigDirName = ".slicerlink"

// ConfigFileName is the name of the global configuration file
const ConfigFileName = "config.yaml"

// StateFileName is the name of the persisted state file (last-used application)
const StateFileName = "state.yaml"

// CatalogFileName is the name of the optional user catalog override file
const CatalogFileName = "apps.yaml"

// ConfigDirPath returns the full path to the global configuration directory.
func ConfigDirPath(homeDir string) string {
	return homeDir + "/" + ConfigDirName
}

// ConfigFilePath returns the full path to the global configuration file
func ConfigFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + ConfigFileName
}

// StateFilePath returns the full path to the persisted state file
func StateFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + StateFileName
}

// CatalogFilePath returns the full path to the user catalog override file
func CatalogFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + CatalogFileName
}

// ConfigDirPermissions is the file system permissions for config directory (0750)
const ConfigDirPermissions = 0o750

// ConfigFilePermissions is the file system permissions for config file (0600)
const ConfigFilePermissions = 0o600

// DownloadDirPermissions is the file system permissions for the download directory (0755)
const DownloadDirPermissions = 0o755

// DownloadFilePermissions is the file system permissions for saved downloads (0644)
const DownloadFilePermissions = 0o644
