package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserByEmail    *gocql.Query
	stmtGetUserByID       *gocql.Query
	stmtInsertUser        *gocql.Query
	stmtInsertUserByEmail *gocql.Query
	stmtGetVariationByID  *gocql.Query
	stmtGetProductPrice   *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (users): %v", err)
			return
		}

		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, created_at
			FROM users WHERE user_id = ?`)

		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, role, provider, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

		stmtInsertUserByEmail = usersSession.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		productsSession, err := GetProductsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (products): %v", err)
			return
		}

		// Chemin chaud de la création de commande : résolution prix/stock
		stmtGetVariationByID = productsSession.Query(`SELECT product_id, sku, price, stock, is_active
			FROM product_variations WHERE variation_id = ?`)

		stmtGetProductPrice = productsSession.Query("SELECT name, price, is_active FROM products WHERE product_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}

func GetPreparedGetVariationByID() *gocql.Query {
	return stmtGetVariationByID
}

func GetPreparedGetProductPrice() *gocql.Query {
	return stmtGetProductPrice
}
