package common

// EngineKind identifies a supported database engine.
type EngineKind string

const (
	EngineMySQL    EngineKind = "mysql"
	EnginePostgres EngineKind = "postgres"
	EngineSQLite   EngineKind = "sqlite"
)

func (k EngineKind) Valid() bool {
	switch k {
	case EngineMySQL, EnginePostgres, EngineSQLite:
		return true
	}
	return false
}
