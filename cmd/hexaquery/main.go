// hexaquery sirve listados REST filtrables, ordenables y paginados sobre
// users y tasks, y permite inspeccionar el SQL que genera una petición.
//
// Uso:
//
//	hexaquery serve
//	hexaquery explain tasks "filter[status]=pending&include=assignee&sort=-created_at"
package main

func main() {
	Execute()
}
