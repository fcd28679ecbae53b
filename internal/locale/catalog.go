package locale

import "github.com/wichananm65/fakturera/internal/language"

var catalog = map[language.Code]map[string]string{
	language.EN: {
		"login.title":           "Log in",
		"login.username":        "Username",
		"login.password":        "Password",
		"login.submit":          "Log in",
		"login.failed":          "Login failed",
		"login.show_password":   "Show password",
		"login.hide_password":   "Hide password",
		"terms.title":           "Terms and Conditions",
		"terms.close":           "Close",
		"terms.loading":         "Loading...",
		"dashboard.price_list":  "Price list",
		"dashboard.article_no":  "Article no",
		"dashboard.product":     "Product/Service",
		"dashboard.in_price":    "In Price",
		"dashboard.price":       "Price",
		"dashboard.unit":        "Unit",
		"dashboard.in_stock":    "In Stock",
		"dashboard.description": "Description",
		"dashboard.search_art":  "Search article no",
		"dashboard.search_prod": "Search product",
		"dashboard.not_apply":   "N/A",
		"dashboard.logout":      "Log out",
		"dashboard.save_failed": "Could not save",
		"dashboard.invalid_num": "Enter a valid number",
		"dashboard.load_failed": "Could not load products",
		"dashboard.no_products": "No products",
		"dashboard.logged_out":  "Your session has expired, please log in again",
	},
	language.SV: {
		"login.title":           "Logga in",
		"login.username":        "Användarnamn",
		"login.password":        "Lösenord",
		"login.submit":          "Logga in",
		"login.failed":          "Inloggningen misslyckades",
		"login.show_password":   "Visa lösenord",
		"login.hide_password":   "Dölj lösenord",
		"terms.title":           "Villkor",
		"terms.close":           "Stäng",
		"terms.loading":         "Laddar...",
		"dashboard.price_list":  "Prislista",
		"dashboard.article_no":  "Artikelnr",
		"dashboard.product":     "Produkt/Tjänst",
		"dashboard.in_price":    "Inpris",
		"dashboard.price":       "Pris",
		"dashboard.unit":        "Enhet",
		"dashboard.in_stock":    "I lager",
		"dashboard.description": "Beskrivning",
		"dashboard.search_art":  "Sök artikelnr",
		"dashboard.search_prod": "Sök produkt",
		"dashboard.not_apply":   "Ej tillämpligt",
		"dashboard.logout":      "Logga ut",
		"dashboard.save_failed": "Kunde inte spara",
		"dashboard.invalid_num": "Ange ett giltigt tal",
		"dashboard.load_failed": "Kunde inte hämta produkter",
		"dashboard.no_products": "Inga produkter",
		"dashboard.logged_out":  "Din session har gått ut, logga in igen",
	},
}
