package generator

// themeCSS styles the listing page with light and dark variants selected by
// the data-theme attribute on the document root.
const themeCSS = `
:root {
    --bg-primary: #ffffff;
    --bg-secondary: #f8f8f8;
    --text-primary: #000000;
    --text-secondary: #555555;
    --border-color: #eeeeee;
    --accent-color: #007aff;
    --card-bg: #ffffff;
    --card-border: #e0e0e0;
    --shadow-sm: 0 1px 3px rgba(0, 0, 0, 0.06);
    --shadow-md: 0 4px 12px rgba(0, 0, 0, 0.1);
}
[data-theme="dark"] {
    --bg-primary: #111111;
    --bg-secondary: #1a1a1a;
    --text-primary: #f5f5f5;
    --text-secondary: #aaaaaa;
    --border-color: #2a2a2a;
    --accent-color: #0a84ff;
    --card-bg: #1a1a1a;
    --card-border: #2e2e2e;
    --shadow-sm: 0 1px 3px rgba(0, 0, 0, 0.4);
    --shadow-md: 0 4px 12px rgba(0, 0, 0, 0.5);
}
* { box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
    background: var(--bg-primary);
    color: var(--text-primary);
    max-width: 720px;
    margin: 0 auto;
    padding: 2rem 1rem;
}
.header h1 { font-size: 1.8rem; margin-bottom: 0.5rem; }
.controls {
    display: flex;
    justify-content: space-between;
    align-items: center;
    margin: 1.5rem 0;
}
.tabs { display: flex; gap: 0.5rem; }
.tab {
    padding: 0.4rem 0.9rem;
    border: 1px solid var(--border-color);
    border-radius: 999px;
    cursor: pointer;
    color: var(--text-secondary);
}
.tab.active {
    color: var(--bg-primary);
    background: var(--accent-color);
    border-color: var(--accent-color);
}
.filter {
    padding: 0.4rem 0.7rem;
    border: 1px solid var(--border-color);
    border-radius: 8px;
    background: var(--card-bg);
    color: var(--text-primary);
}
.post {
    background: var(--card-bg);
    border: 1px solid var(--card-border);
    border-radius: 12px;
    padding: 1.2rem 1.4rem;
    margin-bottom: 1rem;
    box-shadow: var(--shadow-sm);
}
.post:hover { box-shadow: var(--shadow-md); }
.post-header { display: flex; justify-content: space-between; align-items: baseline; }
.post-title { margin: 0; font-size: 1.2rem; }
.post-title a { color: var(--text-primary); text-decoration: none; }
.post-title a:hover { color: var(--accent-color); }
.premium-badge {
    font-size: 0.75rem;
    color: var(--accent-color);
    border: 1px solid var(--accent-color);
    border-radius: 999px;
    padding: 0.1rem 0.6rem;
    white-space: nowrap;
}
.post-excerpt { color: var(--text-secondary); margin: 0.5rem 0; }
.post-meta { display: flex; gap: 1.2rem; color: var(--text-secondary); font-size: 0.85rem; }
.read-more { display: inline-block; margin-top: 0.6rem; color: var(--accent-color); text-decoration: none; }
.theme-toggle {
    position: fixed;
    top: 1rem;
    right: 1rem;
    border: 1px solid var(--border-color);
    border-radius: 999px;
    background: var(--card-bg);
    color: var(--text-primary);
    padding: 0.4rem 0.7rem;
    cursor: pointer;
}
.empty-state { color: var(--text-secondary); text-align: center; padding: 2rem 0; }
`

// themeJS drives the theme toggle, the date/likes sort tabs and the
// free/premium filter. Date sorting tolerates unparseable date strings by
// pushing them to the end.
const themeJS = `
function toggleTheme() {
    const root = document.documentElement;
    const next = root.getAttribute('data-theme') === 'dark' ? 'light' : 'dark';
    root.setAttribute('data-theme', next);
    try { localStorage.setItem('theme', next); } catch (e) {}
}
try {
    const saved = localStorage.getItem('theme');
    if (saved) document.documentElement.setAttribute('data-theme', saved);
} catch (e) {}

function sortPosts(compare) {
    const container = document.getElementById('posts');
    const posts = Array.from(container.children);
    posts.sort(compare);
    container.innerHTML = '';
    posts.forEach(p => container.appendChild(p));
}

function sortByDate() {
    sortPosts((a, b) => {
        const dateA = new Date(a.querySelector('.date').textContent);
        const dateB = new Date(b.querySelector('.date').textContent);
        if (isNaN(dateA.getTime()) && isNaN(dateB.getTime())) return 0;
        if (isNaN(dateA.getTime())) return 1;
        if (isNaN(dateB.getTime())) return -1;
        return dateB - dateA;
    });
}

function sortByLikes() {
    sortPosts((a, b) => {
        const likesA = parseInt(a.querySelector('.likes').textContent.replace(/\D/g, '') || '0');
        const likesB = parseInt(b.querySelector('.likes').textContent.replace(/\D/g, '') || '0');
        return likesB - likesA;
    });
}

function applyFilter(kind) {
    let visible = 0;
    document.querySelectorAll('#posts .post').forEach(p => {
        const paid = p.classList.contains('premium');
        const show = kind === 'all' || (kind === 'premium') === paid;
        p.style.display = show ? '' : 'none';
        if (show) visible++;
    });
    document.querySelector('.empty-state').style.display = visible ? 'none' : '';
}

window.addEventListener('load', () => {
    document.querySelectorAll('.tab').forEach(tab => {
        tab.addEventListener('click', () => {
            document.querySelectorAll('.tab').forEach(t => t.classList.remove('active'));
            tab.classList.add('active');
            if (tab.dataset.sort === 'likes') { sortByLikes(); } else { sortByDate(); }
        });
    });
    document.querySelector('.filter').addEventListener('change', e => applyFilter(e.target.value));
    sortByDate();
});
`
