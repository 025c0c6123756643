package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"vendra_back_end/internal/database"
	"vendra_back_end/internal/ws"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const ordersIndex = "orders"

// OrderIndex pousse les snapshots de commande dans Elasticsearch et sert la
// recherche opérateur. Tout est best effort : Elastic absent ou en erreur
// n'impacte jamais le pipeline de commandes.
type OrderIndex struct{}

func NewOrderIndex() *OrderIndex {
	return &OrderIndex{}
}

// IndexOrder indexe (ou ré-indexe) un snapshot de commande
func (x *OrderIndex) IndexOrder(snapshot ws.OrderSnapshot) {
	if database.Elastic == nil {
		return
	}

	data, _ := json.Marshal(snapshot)
	req := esapi.IndexRequest{
		Index:      ordersIndex,
		DocumentID: snapshot.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour la commande %s: %s", snapshot.ID, res.String())
	}
}

// SearchOrders recherche des commandes par adresse, client ou nom de produit
func (x *OrderIndex) SearchOrders(query string) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"deliveryAddress", "customer.email", "customer.name", "lines.productName", "lines.boxTitle", "status"},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{ordersIndex},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch erreur: %+v", e)
		return nil, errors.New("index non trouvé ou vide")
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}

	hitsData, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("réponse Elastic invalide (pas de hits)")
	}

	hitsArray, ok := hitsData["hits"].([]interface{})
	if !ok {
		return nil, errors.New("aucun résultat trouvé")
	}

	results := make([]map[string]interface{}, 0, len(hitsArray))
	for _, hit := range hitsArray {
		hitMap, _ := hit.(map[string]interface{})
		if source, ok := hitMap["_source"].(map[string]interface{}); ok {
			results = append(results, source)
		}
	}

	return results, nil
}
