package library

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"agal/internal/numeric"
	"agal/internal/value"
)

// NewBd builds the `:bd` module (§4's DOMAIN STACK: database/sql plus
// the four blank-imported wire drivers + modernc.org/sqlite's
// cgo-free pure-Go sqlite driver). Grounded directly on
// sentra/internal/database.DatabaseModule.Connect's dbType-to-DSN
// switch, trimmed of its credential-spraying/scanning fields down to
// plain connect/query/execute, with "sqlite" (modernc, cgo-free) added
// alongside "sqlite3" (mattn, cgo) as a distinct driver name so both
// drivers in go.mod get a real call site.
func NewBd() value.Value {
	m := value.NewMapObj()
	m.Set("conectar", nativeFn("conectar", 2, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		driver, ok := strArg(args, 0)
		dsn, ok2 := strArg(args, 1)
		if !ok || !ok2 {
			return nil, errArg("conectar", "un controlador y una cadena de conexión")
		}
		sqlDriver, dsnOut, err := resolveDriver(driver, dsn)
		if err != nil {
			return nil, err
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			db, openErr := sql.Open(sqlDriver, dsnOut)
			if openErr != nil {
				return nil, openErr
			}
			if pingErr := db.Ping(); pingErr != nil {
				db.Close()
				return nil, pingErr
			}
			return newConexionInstance(db), nil
		}), nil
	}))
	m.Set("Conexion", newConexionClass())
	return m
}

// resolveDriver maps a :bd driver name to the database/sql driver
// registered under that name and, for sqlite, rewrites it to the driver
// the caller actually asked for (mattn's cgo driver for "sqlite3",
// modernc's pure-Go one for "sqlite").
func resolveDriver(driver, dsn string) (string, string, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return "mysql", dsn, nil
	case "postgres", "postgresql":
		return "postgres", dsn, nil
	case "sqlite3":
		return "sqlite3", dsn, nil
	case "sqlite":
		return "sqlite", dsn, nil
	case "sqlserver", "mssql":
		return "sqlserver", dsn, nil
	default:
		return "", "", fmt.Errorf("conectar: controlador no soportado %q", driver)
	}
}

func newConexionClass() *value.Class {
	class := value.NewClass("Conexion")
	inst := class.Instance
	inst.Set("consulta", nativeFn("consulta", -1, func(this value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		db, query, queryArgs, err := conexionQuery(this, args)
		if err != nil {
			return nil, err
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			rows, qerr := db.Query(query, queryArgs...)
			if qerr != nil {
				return nil, qerr
			}
			defer rows.Close()
			return scanRows(rows)
		}), nil
	}), true)
	inst.Set("ejecuta", nativeFn("ejecuta", -1, func(this value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		db, query, queryArgs, err := conexionQuery(this, args)
		if err != nil {
			return nil, err
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			res, eerr := db.Exec(query, queryArgs...)
			if eerr != nil {
				return nil, eerr
			}
			affected, _ := res.RowsAffected()
			return numeric.FromInt64(affected), nil
		}), nil
	}), true)
	inst.Set("cerrar", nativeFn("cerrar", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		db, err := conexionDB(this)
		if err != nil {
			return nil, err
		}
		return value.Never, db.Close()
	}), true)
	return class
}

func newConexionInstance(db *sql.DB) *value.Instance {
	class := newConexionClass()
	inst := value.NewLiveInstance(class)
	inst.Set("db", db, false)
	return inst
}

func conexionDB(this value.Value) (*sql.DB, error) {
	inst, ok := this.(*value.Instance)
	if !ok {
		return nil, errArg("Conexion", "una instancia")
	}
	v, ok := inst.Lookup("db", true)
	if !ok {
		return nil, errArg("Conexion", "una conexión inicializada")
	}
	db, ok := v.(*sql.DB)
	if !ok {
		return nil, errArg("Conexion", "una conexión válida")
	}
	return db, nil
}

func conexionQuery(this value.Value, args []value.Value) (*sql.DB, string, []interface{}, error) {
	db, err := conexionDB(this)
	if err != nil {
		return nil, "", nil, err
	}
	query, ok := strArg(args, 0)
	if !ok {
		return nil, "", nil, errArg("consulta/ejecuta", "una sentencia SQL")
	}
	params := make([]interface{}, 0, len(args)-1)
	for _, a := range args[1:] {
		params = append(params, toSQLParam(a))
	}
	return db, query, params, nil
}

func toSQLParam(v value.Value) interface{} {
	switch t := v.(type) {
	case value.String:
		return string(t)
	case value.Bool:
		return bool(t)
	default:
		return value.ToDisplayString(v)
	}
}

func scanRows(rows *sql.Rows) (value.Value, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0)
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := value.NewMapObj()
		for i, col := range cols {
			row.Set(col, sqlValueToAgal(raw[i]))
		}
		out = append(out, row)
	}
	return value.NewArrayObj(out...), rows.Err()
}

func sqlValueToAgal(raw interface{}) value.Value {
	switch t := raw.(type) {
	case nil:
		return value.Null
	case []byte:
		return value.String(t)
	case string:
		return value.String(t)
	case int64:
		return numeric.FromInt64(t)
	case float64:
		return numeric.FromInt64(int64(t))
	case bool:
		return value.FromBool(t)
	default:
		return value.String(fmt.Sprint(t))
	}
}
