package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

const (
	employeeIndex   = "employees"
	defaultPageSize = 1000
)

// name is a keyword so term queries match the whole value exactly,
// the same as the relational gateway's equality filter.
const employeeIndexMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "integer"},
			"name":          {"type": "keyword"},
			"salary":        {"type": "keyword"},
			"department_id": {"type": "integer"}
		}
	}
}`

// EmployeeDoc mirrors domain.Employee for ES storage.
type EmployeeDoc struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Salary       string `json:"salary"`
	DepartmentID *int   `json:"department_id,omitempty"`
}

func newEmployeeDoc(e domain.Employee) EmployeeDoc {
	return EmployeeDoc{ID: e.ID, Name: e.Name, Salary: e.Salary, DepartmentID: e.DepartmentID}
}

func (d EmployeeDoc) toEmployee() domain.Employee {
	return domain.Employee{ID: d.ID, Name: d.Name, Salary: d.Salary, DepartmentID: d.DepartmentID}
}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client   *elastic.Client
	pageSize int
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, pageSize: defaultPageSize}, nil
}

// EnsureIndex creates the employee index with its mapping when missing.
func (es *ElasticSearchClient) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(employeeIndex).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", employeeIndex, err)
	}
	if exists {
		return nil
	}
	if _, err := es.client.CreateIndex(employeeIndex).BodyString(employeeIndexMapping).Do(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", employeeIndex, err)
	}
	return nil
}

// IndexEmployee indexes an employee document using its id as document id.
func (es *ElasticSearchClient) IndexEmployee(ctx context.Context, e domain.Employee) error {
	_, err := es.client.Index().
		Index(employeeIndex).
		Id(strconv.Itoa(e.ID)).
		BodyJson(newEmployeeDoc(e)).
		Refresh("true"). // Make changes immediately searchable
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index employee %d: %w", e.ID, err)
	}
	return nil
}

// IndexEmployees bulk indexes employees, replacing documents with the same id.
func (es *ElasticSearchClient) IndexEmployees(ctx context.Context, employees []domain.Employee) error {
	if len(employees) == 0 {
		return nil
	}

	bulk := es.client.Bulk().Index(employeeIndex).Refresh("true")
	for _, e := range employees {
		bulk.Add(elastic.NewBulkIndexRequest().Id(strconv.Itoa(e.ID)).Doc(newEmployeeDoc(e)))
	}
	resp, err := bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk index %d employees: %w", len(employees), err)
	}
	if failed := resp.Failed(); len(failed) > 0 {
		reason := ""
		if failed[0].Error != nil {
			reason = failed[0].Error.Reason
		}
		return fmt.Errorf("failed to index %d of %d employees: %s", len(failed), len(employees), reason)
	}
	return nil
}

// SearchEmployeesByName returns every employee whose name equals name exactly,
// paging through the hits in id order.
func (es *ElasticSearchClient) SearchEmployeesByName(ctx context.Context, name string) ([]domain.Employee, error) {
	employees := []domain.Employee{}
	var after []interface{}

	for {
		search := es.client.Search().
			Index(employeeIndex).
			Query(elastic.NewTermQuery("name", name)).
			Sort("id", true).
			Size(es.pageSize)
		if after != nil {
			search = search.SearchAfter(after...)
		}

		searchResult, err := search.Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		hits := searchResult.Hits.Hits
		for _, hit := range hits {
			var doc EmployeeDoc
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, fmt.Errorf("failed to unmarshal employee hit %s: %w", hit.Id, err)
			}
			employees = append(employees, doc.toEmployee())
		}

		if len(hits) < es.pageSize {
			return employees, nil
		}
		after = hits[len(hits)-1].Sort
	}
}
