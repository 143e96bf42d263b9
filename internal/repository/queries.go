package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Statistical tables of the item master, as numbered in ATEXTRA.IDENT1_0.
const (
	tableRange   = "21"
	tableFamily2 = "22"
	tableFamily3 = "23"
	tableFamily4 = "24"
	tableFamily5 = "26"
)

// projection describes the per-strategy aliases of the shared column set.
type projection struct {
	family1      string
	family1Table string
	subFamily    string
	subTable     string
}

var (
	// Scope listings come from the pre-joined view where level 1 is the category.
	scopeProjection = projection{
		family1:   "i.tclcod_0",
		subFamily: "i.tsicod_3",
		subTable:  tableFamily3,
	}

	// Category listings expose the first statistical group as level 1 and the
	// level the sub-category filter narrows on as sub-family.
	categoryProjection = projection{
		family1:      "i.tsicod_1",
		family1Table: tableRange,
		subFamily:    "i.tsicod_4",
		subTable:     tableFamily4,
	}
)

// queries holds the SQL of every strategy for one schema.
type queries struct {
	listDefault       string
	listExtended      string
	listRestricted    string
	listByCategory    string
	listBySubCategory string
	getByReference    string
}

func buildQueries(schema string) queries {
	s := pgx.Identifier{schema}.Sanitize()

	base := "i.itmsta_0 = 1 AND i.xtablette_0 = 2"

	return queries{
		listDefault: selectSQL(s, scopeProjection,
			base+" AND i.tclcod_0 = ANY($2)"),
		listExtended: selectSQL(s, scopeProjection,
			"i.itmsta_0 = 1 AND i.tclcod_0 = ANY($2) AND (i.xtablette_0 = 2 OR i.z_marque_0 = ANY($3))"),
		listRestricted: selectSQL(s, scopeProjection,
			base+" AND i.tclcod_0 = ANY($2) AND COALESCE(i.z_marque_0, '') <> ALL($3)"),
		listByCategory: selectSQL(s, categoryProjection,
			base+" AND i.tclcod_0 = $2"),
		listBySubCategory: selectSQL(s, categoryProjection,
			base+" AND i.tclcod_0 = $2 AND i.tsicod_4 = $3"),
		getByReference: selectSQL(s, scopeProjection,
			"i.itmsta_0 = 1 AND i.itmref_0 = $2"),
	}
}

func labelSQL(schema, table, code string) string {
	return fmt.Sprintf(`(SELECT x.texte_0 FROM %s.atextra x
		WHERE x.codfic_0 = 'ATABDIV' AND x.langue_0 = 'FRA' AND x.zone_0 = 'LNGDES'
		AND x.ident1_0 = '%s' AND x.ident2_0 = %s LIMIT 1)`, schema, table, code)
}

func categoryLabelSQL(schema string) string {
	return fmt.Sprintf(`(SELECT x.texte_0 FROM %s.atextra x
		WHERE x.codfic_0 = 'ITMCATEG' AND x.langue_0 = 'FRA' AND x.zone_0 = 'TCLAXX'
		AND x.ident1_0 = i.tclcod_0 LIMIT 1)`, schema)
}

// selectSQL renders the shared column set. $1 is always the price list code.
func selectSQL(schema string, p projection, where string) string {
	family1Label := categoryLabelSQL(schema)
	if p.family1Table != "" {
		family1Label = labelSQL(schema, p.family1Table, p.family1)
	}

	columns := []string{
		"i.itmref_0 AS reference",
		"i.itmdes1_0 AS display_name",
		"i.tclcod_0 AS category",
		categoryLabelSQL(schema) + " AS category_label",
		"i.tsicod_1 AS range_code",
		labelSQL(schema, tableRange, "i.tsicod_1") + " AS range_label",
		p.family1 + " AS family1",
		family1Label + " AS family1_label",
		"i.tsicod_2 AS family2",
		labelSQL(schema, tableFamily2, "i.tsicod_2") + " AS family2_label",
		"i.tsicod_3 AS family3",
		labelSQL(schema, tableFamily3, "i.tsicod_3") + " AS family3_label",
		"i.tsicod_4 AS family4",
		labelSQL(schema, tableFamily4, "i.tsicod_4") + " AS family4_label",
		"i.z_tsi6_0 AS family5",
		labelSQL(schema, tableFamily5, "i.z_tsi6_0") + " AS family5_label",
		p.subFamily + " AS sub_family",
		labelSQL(schema, p.subTable, p.subFamily) + " AS sub_family_label",
		"i.tsicod_4 AS sku",
		labelSQL(schema, tableFamily4, "i.tsicod_4") + " AS sku_label",
		"i.z_marque_0 AS brand",
		"i.itmref_0 AS image",
		"t.pri_0::text AS price",
	}

	return fmt.Sprintf(`SELECT %s
	FROM %s.itmmaster i
	INNER JOIN %s.spriclist t ON i.itmref_0 = t.plicri1_0
		AND t.pli_0 = $1
		AND t.plistrdat_0::date <= current_date
		AND t.plienddat_0::date >= current_date
	WHERE %s
	ORDER BY i.itmref_0`, strings.Join(columns, ",\n\t\t"), schema, schema, where)
}
