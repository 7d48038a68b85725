// Package all registers every storage backend with the storage factory.
package all

import (
	_ "movielens/internal/storage/mssql"
	_ "movielens/internal/storage/mysql"
	_ "movielens/internal/storage/postgres"
	_ "movielens/internal/storage/sqlite"
)
