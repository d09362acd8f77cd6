package repository

import (
	"context"
	"fmt"

	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements ProductRepository using PostgreSQL. The
// nested Product -> Variant -> SizeStock document shape is stored across
// three tables and reassembled on read.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, batch_name, main_category, sub_category, gender, item_name, description, price, created_at, updated_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.BatchName, &p.MainCategory, &p.SubCategory, &p.Gender,
		&p.ItemName, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
}

// List retrieves products with their variants, paginated.
func (r *productRepository) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY item_name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	var ids []uuid.UUID
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products, ids); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with variants.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{p}
	if err := r.attachVariants(ctx, products, []uuid.UUID{p.ID}); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// attachVariants loads the variant trees for the given product ids and
// distributes them onto the product slice in place.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT pv.product_id, pv.id, pv.color, pv.images, vs.id, vs.size, vs.stock
		FROM product_variants pv
		LEFT JOIN variant_sizes vs ON vs.variant_id = pv.id
		WHERE pv.product_id = ANY($1)
		ORDER BY pv.product_id, pv.position, pv.id, vs.size
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query variants")
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	variantsByProduct := make(map[uuid.UUID][]model.Variant, len(ids))
	for rows.Next() {
		var (
			productID uuid.UUID
			variantID uuid.UUID
			color     string
			images    []string
			sizeID    *uuid.UUID
			size      *string
			stock     *int
		)
		if err := rows.Scan(&productID, &variantID, &color, &images, &sizeID, &size, &stock); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return fmt.Errorf("failed to scan variant: %w", err)
		}

		variants := variantsByProduct[productID]
		if len(variants) == 0 || variants[len(variants)-1].ID != variantID {
			variants = append(variants, model.Variant{
				ID:     variantID,
				Color:  color,
				Images: images,
			})
		}
		if sizeID != nil {
			last := &variants[len(variants)-1]
			last.Sizes = append(last.Sizes, model.SizeStock{ID: *sizeID, Size: *size, Stock: *stock})
		}
		variantsByProduct[productID] = variants
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	for i := range products {
		products[i].Variants = variantsByProduct[products[i].ID]
	}

	return nil
}

// Create inserts a product together with its variants and sizes.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO products (id, batch_name, main_category, sub_category, gender, item_name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, query,
		product.ID, product.BatchName, product.MainCategory, product.SubCategory,
		product.Gender, product.ItemName, product.Description, product.Price,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := r.insertVariants(ctx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product insert: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product created")
	return nil
}

// Update replaces the product row and its entire variant tree. The tree is
// deleted and re-inserted; size row ids are regenerated.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE products
		SET batch_name = $2, main_category = $3, sub_category = $4, gender = $5,
		    item_name = $6, description = $7, price = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		product.ID, product.BatchName, product.MainCategory, product.SubCategory,
		product.Gender, product.ItemName, product.Description, product.Price,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewProductNotFound(product.ItemName)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear variants: %w", err)
	}

	if err := r.insertVariants(ctx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product updated")
	return nil
}

func (r *productRepository) insertVariants(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	variantQuery := `
		INSERT INTO product_variants (id, product_id, color, images, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	sizeQuery := `
		INSERT INTO variant_sizes (id, variant_id, size, stock)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	count := 0
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		batch.Queue(variantQuery, v.ID, product.ID, v.Color, v.Images, i)
		count++
		for j := range v.Sizes {
			s := &v.Sizes[j]
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			batch.Queue(sizeQuery, s.ID, v.ID, s.Size, s.Stock)
			count++
		}
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < count; i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to insert variant tree")
			return fmt.Errorf("failed to insert variant tree: %w", err)
		}
	}

	return nil
}

// Delete removes a product and, via cascade, its variants and sizes.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the total number of products.
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// GetPricing resolves the authoritative name and price of a product inside
// the caller's transaction.
func (r *productRepository) GetPricing(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.ProductPricing, error) {
	var p model.ProductPricing
	err := tx.QueryRow(ctx, `SELECT id, item_name, price FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.ItemName, &p.Price)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product pricing")
		return nil, fmt.Errorf("failed to query product pricing: %w", err)
	}
	return &p, nil
}

// FindVariantSize resolves the stock counter for an exact (productID,
// colour, size) match inside the caller's transaction.
func (r *productRepository) FindVariantSize(ctx context.Context, tx pgx.Tx, productID uuid.UUID, color, size string) (*model.VariantSizeRef, error) {
	query := `
		SELECT vs.id, vs.stock, COALESCE(pv.images[1], '')
		FROM product_variants pv
		JOIN variant_sizes vs ON vs.variant_id = pv.id
		WHERE pv.product_id = $1 AND pv.color = $2 AND vs.size = $3
	`

	var ref model.VariantSizeRef
	err := tx.QueryRow(ctx, query, productID, color, size).Scan(&ref.SizeID, &ref.Stock, &ref.Image)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Str("color", color).
			Str("size", size).
			Msg("failed to query variant size")
		return nil, fmt.Errorf("failed to query variant size: %w", err)
	}
	return &ref, nil
}

// DecrementStock atomically runs "stock = stock - quantity" guarded by
// "stock >= quantity". The guard is what makes two concurrent checkouts
// for the last unit resolve to exactly one success.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE variant_sizes
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, sizeID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("size_id", sizeID.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ReadStock reads the current stock of a size row inside the caller's
// transaction.
func (r *productRepository) ReadStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID) (int, error) {
	var stock int
	err := tx.QueryRow(ctx, `SELECT stock FROM variant_sizes WHERE id = $1`, sizeID).Scan(&stock)
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return stock, nil
}

// SetStock writes an absolute stock value for the addressed (productID,
// colour, size). Used by the admin direct stock edit only.
func (r *productRepository) SetStock(ctx context.Context, productID uuid.UUID, color, size string, newStock int) (bool, error) {
	query := `
		UPDATE variant_sizes vs
		SET stock = $4
		FROM product_variants pv
		WHERE vs.variant_id = pv.id
		  AND pv.product_id = $1 AND pv.color = $2 AND vs.size = $3
	`

	tag, err := r.pool.Exec(ctx, query, productID, color, size, newStock)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Str("color", color).
			Str("size", size).
			Msg("failed to set stock")
		return false, fmt.Errorf("failed to set stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
