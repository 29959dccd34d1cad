/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package dialect

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// BuildMySQLDSN assembles a go-sql-driver/mysql DSN from discrete fields,
// the way sqldef's driver.mysqlBuildDSN does.
func BuildMySQLDSN(host string, port int, user, password, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = dbName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// IsTransientMySQLError classifies a driver-native MySQL error as
// transient (safe to retry outside a transaction) per §4.H/§7.
func IsTransientMySQLError(err error) bool {
	mysqlErr, ok := err.(*mysql.MySQLError)
	if !ok {
		return false
	}
	switch mysqlErr.Number {
	case 1205, // lock wait timeout
		1213, // deadlock found when trying to get lock
		1040, // too many connections
		2006, // server has gone away
		2013: // lost connection during query
		return true
	default:
		return false
	}
}
